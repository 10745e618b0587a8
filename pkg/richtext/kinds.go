package richtext

// Kind identifies a node type. The set is closed for rendering purposes;
// anything outside it is KindUnknown and is preserved as-is.
type Kind int

const (
	KindUnknown Kind = iota
	KindDoc
	KindParagraph
	KindHeading
	KindText
	KindBlockquote
	KindBulletList
	KindOrderedList
	KindListItem
	KindCodeBlock
	KindHorizontalRule
	KindHardBreak
	KindImage
	KindTaskList
	KindTaskItem
)

var kindByType = map[string]Kind{
	"doc":            KindDoc,
	"paragraph":      KindParagraph,
	"heading":        KindHeading,
	"text":           KindText,
	"blockquote":     KindBlockquote,
	"bulletList":     KindBulletList,
	"orderedList":    KindOrderedList,
	"listItem":       KindListItem,
	"codeBlock":      KindCodeBlock,
	"horizontalRule": KindHorizontalRule,
	"hardBreak":      KindHardBreak,
	"image":          KindImage,
	"taskList":       KindTaskList,
	"taskItem":       KindTaskItem,
}

// KindOf maps a node type discriminator to its Kind.
func KindOf(nodeType string) Kind {
	if k, ok := kindByType[nodeType]; ok {
		return k
	}
	return KindUnknown
}

// String returns the discriminator for known kinds and "unknown" otherwise.
func (k Kind) String() string {
	for t, kk := range kindByType {
		if kk == k {
			return t
		}
	}
	return "unknown"
}
