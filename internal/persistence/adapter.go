package persistence

import "context"

// Logical blob keys owned by the ticket store.
const (
	KeyTickets  = "tickets"
	KeyComments = "comments"
)

// Adapter stores opaque JSON blobs by key. It carries no business logic; a
// missing blob means "initialize empty" and is reported via found=false, not
// an error.
type Adapter interface {
	Load(ctx context.Context, key string) (blob []byte, found bool, err error)
	Save(ctx context.Context, key string, blob []byte) error
}
