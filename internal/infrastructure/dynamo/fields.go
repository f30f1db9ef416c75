package dynamo

// DynamoDB attribute names used in update expressions across all repos.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldEmailVerified = "email_verified"
	fieldUpdatedAt     = "updated_at"
	fieldName          = "name"
	fieldImage         = "image"
	fieldGoogleSub     = "google_sub"
)

// feedPartition is the constant hash key of the feed-index GSI on the ads table.
const feedPartition = "ads"
