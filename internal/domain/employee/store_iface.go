package employee

import "context"

type StoreAPI interface {
	Insert(ctx context.Context, payload Payload) (Employee, error)
	Get(ctx context.Context, id string) (Employee, error)
	List(ctx context.Context) ([]Employee, error)
	Replace(ctx context.Context, id string, payload Payload) (Employee, error)
	Delete(ctx context.Context, id string) error
	NationalIDTaken(ctx context.Context, nationalID, excludeID string) (bool, error)
}
