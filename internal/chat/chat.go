package chat

// Message is one chat line between a customer and the support desk. When
// IsAdmin is set the sender is the shared admin identity; ReceiverID is
// always the customer whose conversation the line belongs to.
type Message struct {
	ID         int    `json:"id"`
	SenderID   int    `json:"senderId"`
	ReceiverID int    `json:"receiverId"`
	Body       string `json:"message"`
	IsAdmin    bool   `json:"isAdmin"`
	CreatedAt  string `json:"createdAt"`
}

// Conversation is the admin inbox row: one entry per customer with the most
// recent message as a preview.
type Conversation struct {
	CustomerID   int    `json:"customerId"`
	CustomerName string `json:"customerName"`
	LastMessage  string `json:"lastMessage"`
	LastAt       string `json:"lastAt"`
}
