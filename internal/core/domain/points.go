package domain

type TransferRequest struct {
	ReceiverEmail string `json:"receiverEmail" validate:"required,email"`
	Amount        int64  `json:"amount" validate:"gte=1"`
}

type TransferResult struct {
	Message       string `json:"message"`
	SenderBalance int64  `json:"senderBalance"`
}

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)
