package core

// TransactionFilter narrows ledger queries. Zero values mean "no filter".
// From/To bound the transaction date inclusively on both ends.
type TransactionFilter struct {
	Kind     TransactionKind
	Category string
	From     Date
	To       Date
	Limit    int
}
