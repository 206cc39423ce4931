package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/frahmantamala/salary-advance/internal/employee"
	employeePostgres "github.com/frahmantamala/salary-advance/internal/employee/postgres"
	"github.com/frahmantamala/salary-advance/internal/user"
	userPostgres "github.com/frahmantamala/salary-advance/internal/user/postgres"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed a demo partner, its employees and the back-office staff for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer sqlDB.Close()

		db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to open gorm session: %v", err)
		}

		ctx := context.Background()

		if clearData {
			for _, table := range []string{"reimbursements", "transactions", "advance_requests", "employees", "partners", "users"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		seedStaff(ctx, db)
		seedPartner(ctx, db)
	},
}

func exists(db *gorm.DB, query string, args ...interface{}) bool {
	var one int
	return db.Raw(query, args...).Row().Scan(&one) == nil
}

func seedStaff(ctx context.Context, db *gorm.DB) {
	users := userPostgres.NewUserRepository(db)

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	staff := []*user.User{
		{ID: "usr-admin", Email: "admin@avance-salaire.gn", Name: "Mamadou Diallo", Phone: "622000001", Role: "admin"},
		{ID: "usr-rh", Email: "rh@avance-salaire.gn", Name: "Fatoumata Camara", Phone: "622000002", Role: "rh"},
		{ID: "usr-resp", Email: "responsable@avance-salaire.gn", Name: "Ibrahima Sylla", Phone: "622000003", Role: "responsable"},
	}

	for _, u := range staff {
		if exists(db, "SELECT 1 FROM users WHERE email = ?", u.Email) {
			fmt.Println("user already exists:", u.Email)
			continue
		}
		u.PasswordHash = string(hash)
		u.IsActive = true
		if err := users.Create(ctx, u); err != nil {
			log.Fatalf("failed to insert user %s: %v", u.Email, err)
		}
		fmt.Printf("Seeded %s user: %s\n", u.Role, u.Email)
	}
}

func seedPartner(ctx context.Context, db *gorm.DB) {
	repo := employeePostgres.NewEmployeeRepository(db)

	partner := &employee.Partner{
		ID:           "ptn-demo",
		Name:         "Société Minière de Boké",
		ContactEmail: "paie@smb-demo.gn",
		ContactPhone: "224625000000",
		IsActive:     true,
	}
	if exists(db, "SELECT 1 FROM partners WHERE id = ?", partner.ID) {
		fmt.Println("partner already exists:", partner.Name)
	} else {
		if err := repo.CreatePartner(ctx, partner); err != nil {
			log.Fatalf("failed to insert partner: %v", err)
		}
		fmt.Println("Seeded partner:", partner.Name)
	}

	employees := []*employee.Employee{
		{ID: "emp-001", FirstName: "Aissatou", LastName: "Bah", Phone: "622123456", Email: "aissatou.bah@smb-demo.gn", Salary: 3500000},
		{ID: "emp-002", FirstName: "Ousmane", LastName: "Kouyaté", Phone: "664987654", Email: "ousmane.kouyate@smb-demo.gn", Salary: 2800000},
		{ID: "emp-003", FirstName: "Mariama", LastName: "Soumah", Phone: "224655112233", Salary: 4200000},
	}

	for _, e := range employees {
		if exists(db, "SELECT 1 FROM employees WHERE id = ?", e.ID) {
			continue
		}
		e.PartnerID = partner.ID
		e.IsActive = true
		if err := repo.Create(ctx, e); err != nil {
			log.Fatalf("failed to insert employee %s: %v", e.ID, err)
		}
		fmt.Println("Seeded employee:", e.FullName())
	}
}
