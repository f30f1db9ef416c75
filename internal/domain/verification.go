package domain

// VerificationToken is a one-shot email verification token.
// PK: token. GSI user_id-index lets a new token replace the previous ones.
// Expires is a Unix timestamp also used as DynamoDB TTL.
type VerificationToken struct {
	Token   string `json:"token" dynamodbav:"token"`
	UserID  string `json:"user_id" dynamodbav:"user_id"`
	Expires int64  `json:"expires" dynamodbav:"expires"`
}
