package thread

// Product is the application a thread belongs to.
type Product string

const (
	ProductCoPilot    Product = "co_pilot"
	ProductDocCreator Product = "doc_creator"
	ProductDevas      Product = "devas"
	ProductMermaid    Product = "mermaid"
	ProductAgentix    Product = "agentix"
)

func Products() []Product {
	return []Product{ProductCoPilot, ProductDocCreator, ProductDevas, ProductMermaid, ProductAgentix}
}

func (p Product) Valid() bool {
	for _, v := range Products() {
		if p == v {
			return true
		}
	}
	return false
}

type Role string

const (
	RoleUser      Role = "user"
	RoleSystem    Role = "system"
	RoleAssistant Role = "assistant"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleSystem, RoleAssistant:
		return true
	default:
		return false
	}
}
