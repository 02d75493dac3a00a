package entity

// Requester is the verified identity of the person asking. Constructed per
// request from already-verified token claims; never persisted by the core.
type Requester struct {
	Id         string
	RoleNames  []string
	Attributes map[string]interface{}
}
