package notification

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

// message is the rendered content for one event.
type message struct {
	Subject  string
	Greeting string
	Lines    []string
	SMS      string
	AdminSMS string
	Title    string
}

var emailLayout = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html lang="fr">
<head><meta charset="utf-8"><title>{{.Subject}}</title></head>
<body style="font-family: Arial, sans-serif; color: #1f2937;">
  <h2>{{.Subject}}</h2>
  <p>{{.Greeting}}</p>
  {{range .Lines}}<p>{{.}}</p>
  {{end}}<p>Cordialement,<br>L'équipe {{.Platform}}</p>
</body>
</html>`))

type emailView struct {
	Subject  string
	Greeting string
	Lines    []string
	Platform string
}

func renderHTML(msg message, platform string) (string, error) {
	var buf bytes.Buffer
	err := emailLayout.Execute(&buf, emailView{
		Subject:  msg.Subject,
		Greeting: msg.Greeting,
		Lines:    msg.Lines,
		Platform: platform,
	})
	if err != nil {
		return "", fmt.Errorf("render email: %w", err)
	}
	return buf.String(), nil
}

func renderText(msg message, platform string) string {
	var b strings.Builder
	b.WriteString(msg.Greeting)
	b.WriteString("\n\n")
	for _, line := range msg.Lines {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\nCordialement,\nL'équipe ")
	b.WriteString(platform)
	return b.String()
}

type requestView struct {
	FirstName    string
	EmployeeName string
	PartnerName  string
	Amount       string
	NetAmount    string
	Reason       string
	Date         string
	Platform     string
}

func requestReceivedMessage(v requestView) message {
	return message{
		Title:    "Nouvelle demande d'avance",
		Subject:  "Demande d'avance sur salaire reçue",
		Greeting: fmt.Sprintf("Bonjour %s,", v.FirstName),
		Lines: []string{
			fmt.Sprintf("Votre demande d'avance sur salaire de %s a bien été reçue le %s.", v.Amount, v.Date),
			fmt.Sprintf("Motif : %s", v.Reason),
			"Elle est en cours de traitement. Vous serez informé(e) de la décision.",
		},
		SMS: fmt.Sprintf("%s: Bonjour %s, votre demande d'avance de %s (motif : %s) a été reçue le %s et est en cours de traitement.",
			v.Platform, v.FirstName, v.Amount, v.Reason, v.Date),
		AdminSMS: fmt.Sprintf("%s: nouvelle demande d'avance de %s (%s) pour %s. Motif : %s.",
			v.Platform, v.EmployeeName, v.PartnerName, v.Amount, v.Reason),
	}
}

func approvedMessage(v requestView) message {
	return message{
		Title:    "Demande d'avance approuvée",
		Subject:  "Votre demande d'avance a été approuvée",
		Greeting: fmt.Sprintf("Bonjour %s,", v.FirstName),
		Lines: []string{
			fmt.Sprintf("Votre demande d'avance sur salaire de %s a été approuvée.", v.Amount),
			fmt.Sprintf("Le paiement de %s vous sera envoyé par mobile money dans les prochains instants.", v.NetAmount),
		},
		SMS: fmt.Sprintf("%s: Bonjour %s, votre demande d'avance de %s a été approuvée. Le paiement de %s suivra par mobile money.",
			v.Platform, v.FirstName, v.Amount, v.NetAmount),
		AdminSMS: fmt.Sprintf("%s: la demande d'avance de %s (%s) pour %s a été approuvée.",
			v.Platform, v.EmployeeName, v.PartnerName, v.Amount),
	}
}

func rejectedMessage(v requestView) message {
	return message{
		Title:    "Demande d'avance rejetée",
		Subject:  "Votre demande d'avance a été rejetée",
		Greeting: fmt.Sprintf("Bonjour %s,", v.FirstName),
		Lines: []string{
			fmt.Sprintf("Votre demande d'avance sur salaire de %s n'a pas été acceptée.", v.Amount),
			fmt.Sprintf("Motif du rejet : %s", v.Reason),
		},
		SMS: fmt.Sprintf("%s: Bonjour %s, votre demande d'avance de %s a été rejetée. Motif : %s",
			v.Platform, v.FirstName, v.Amount, v.Reason),
		AdminSMS: fmt.Sprintf("%s: la demande d'avance de %s (%s) pour %s a été rejetée. Motif : %s",
			v.Platform, v.EmployeeName, v.PartnerName, v.Amount, v.Reason),
	}
}

type paymentView struct {
	FirstName    string
	EmployeeName string
	Amount       string
	Method       string
	PayID        string
	Reason       string
	Date         string
	Platform     string
}

func paymentSuccessMessage(v paymentView) message {
	return message{
		Title:    "Paiement d'avance effectué",
		Subject:  "Paiement de votre avance effectué",
		Greeting: fmt.Sprintf("Bonjour %s,", v.FirstName),
		Lines: []string{
			fmt.Sprintf("Le paiement de votre avance sur salaire de %s a été effectué le %s.", v.Amount, v.Date),
			fmt.Sprintf("Mode de paiement : %s", v.Method),
			fmt.Sprintf("Identifiant de transaction : %s", v.PayID),
		},
		SMS: fmt.Sprintf("%s: Bonjour %s, votre avance de %s a été payée via %s. Transaction : %s.",
			v.Platform, v.FirstName, v.Amount, v.Method, v.PayID),
	}
}

func paymentFailureMessage(v paymentView) message {
	return message{
		Title:    "Échec du paiement d'avance",
		Subject:  "Échec du paiement de votre avance",
		Greeting: fmt.Sprintf("Bonjour %s,", v.FirstName),
		Lines: []string{
			fmt.Sprintf("Le paiement de votre avance sur salaire de %s n'a pas pu aboutir.", v.Amount),
			fmt.Sprintf("Raison : %s", v.Reason),
			"Notre équipe va vous recontacter pour régulariser la situation.",
		},
		SMS: fmt.Sprintf("%s: Bonjour %s, le paiement de votre avance de %s a échoué. Raison : %s. Notre équipe vous recontactera.",
			v.Platform, v.FirstName, v.Amount, v.Reason),
	}
}
