package domain

type ChangeKind string

const (
	ChangeUpsert ChangeKind = "UPSERT"
	ChangeDelete ChangeKind = "DELETE"
)

// ItemChangeEvent is a catalog notification. ItemID is nil when the message carried no usable id.
type ItemChangeEvent struct {
	ItemID *int64
	Kind   ChangeKind
}
