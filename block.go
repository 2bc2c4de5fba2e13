package aivae

// Block is a sealed interface representing one structural unit of rich text.
// The unexported marker method prevents external implementations.
type Block interface {
	block()
}

// Heading is a top-level heading ("### Title").
type Heading struct {
	Text string
}

func (Heading) block() {}

// Subheading is a bold sub-heading ("**Title**").
type Subheading struct {
	Text string
}

func (Subheading) block() {}

// Paragraph is a line of plain text.
type Paragraph struct {
	Text string
}

func (Paragraph) block() {}

// ListKind distinguishes numbered from bulleted lists.
type ListKind int

const (
	ListOrdered ListKind = iota
	ListUnordered
)

func (k ListKind) String() string {
	switch k {
	case ListOrdered:
		return "ordered"
	case ListUnordered:
		return "unordered"
	default:
		return "unknown"
	}
}

// List groups adjacent list items of the same kind, in input order.
type List struct {
	Kind  ListKind
	Items []string
}

func (List) block() {}

// Interface compliance checks.
var (
	_ Block = Heading{}
	_ Block = Subheading{}
	_ Block = Paragraph{}
	_ Block = List{}
)
