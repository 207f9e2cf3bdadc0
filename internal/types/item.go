package types

// Item is one displayable unit of thread content. The variant set is closed;
// consumers switch exhaustively so a new kind is a compile-visible change.
// Identity is the item ID, unique within a thread; insertion order is display
// order.
type Item interface {
	ID() string
	item()
}

type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

type Message struct {
	ItemID      string
	Role        MessageRole
	Text        string
	Attachments []string
}

func (m Message) ID() string { return m.ItemID }
func (Message) item()        {}

type Reasoning struct {
	ItemID  string
	Summary string
	Content string
}

func (r Reasoning) ID() string { return r.ItemID }
func (Reasoning) item()        {}

type ToolType string

const (
	ToolCommand    ToolType = "command"
	ToolFileChange ToolType = "fileChange"
	ToolMCP        ToolType = "mcp"
	ToolWebSearch  ToolType = "webSearch"
	ToolImageView  ToolType = "imageView"
)

type Tool struct {
	ItemID   string
	ToolType ToolType
	Title    string
	Detail   string
	Status   string
	Output   string
	Changes  []FileChange
}

func (t Tool) ID() string { return t.ItemID }
func (Tool) item()        {}

type FileChange struct {
	Path string
	Kind string
	Diff string
}

type ReviewState string

const (
	ReviewStarted   ReviewState = "started"
	ReviewCompleted ReviewState = "completed"
)

type Review struct {
	ItemID string
	State  ReviewState
	Text   string
}

func (r Review) ID() string { return r.ItemID }
func (Review) item()        {}

type Diff struct {
	ItemID string
	Title  string
	Diff   string
	Status string
}

func (d Diff) ID() string { return d.ItemID }
func (Diff) item()        {}
