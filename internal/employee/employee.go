// Package employee reads employee and partner contact data.
package employee

import (
	"context"

	employeeDatamodel "github.com/frahmantamala/salary-advance/internal/core/datamodel/employee"
)

type Employee = employeeDatamodel.Employee
type Partner = employeeDatamodel.Partner

type RepositoryAPI interface {
	GetByID(ctx context.Context, id string) (*Employee, error)
	GetPartner(ctx context.Context, id string) (*Partner, error)
	ListByPartner(ctx context.Context, partnerID string) ([]*Employee, error)
	Create(ctx context.Context, e *Employee) error
	CreatePartner(ctx context.Context, p *Partner) error
}
