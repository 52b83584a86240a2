package ticket

// Created tells apart tickets materialized with their range from tickets
// registered later by hand.
type Created string

const (
	CreatedPreGenerated Created = "PRE_GENERATED"
	CreatedAfterImport  Created = "AFTER_IMPORT"
)

func (c Created) IsValid() bool {
	switch c {
	case CreatedPreGenerated, CreatedAfterImport:
		return true
	}
	return false
}

func (c Created) String() string {
	return string(c)
}
