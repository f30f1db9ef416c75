package dynamo

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildUpdateExpr_SingleField(t *testing.T) {
	ue, err := buildUpdateExpr(map[string]interface{}{"name": "alice"})
	require.NoError(t, err)
	assert.Equal(t, "SET #f0 = :v0", ue.Expr)
	assert.Equal(t, map[string]string{"#f0": "name"}, ue.Names)
	_, ok := ue.Values[":v0"]
	assert.True(t, ok)
}

func TestBuildUpdateExpr_MultipleFields_Deterministic(t *testing.T) {
	updates := map[string]interface{}{
		"updated_at":     "2024-01-01T00:00:00Z",
		"email_verified": "2024-01-01T00:00:00Z",
		"name":           "Alice",
	}
	ue1, err := buildUpdateExpr(updates)
	require.NoError(t, err)
	ue2, err := buildUpdateExpr(updates)
	require.NoError(t, err)

	assert.Equal(t, ue1.Expr, ue2.Expr)
	assert.Equal(t, "email_verified", ue1.Names["#f0"])
	assert.Equal(t, "name", ue1.Names["#f1"])
	assert.Equal(t, "updated_at", ue1.Names["#f2"])
	assert.Equal(t, "SET #f0 = :v0, #f1 = :v1, #f2 = :v2", ue1.Expr)
}

func TestBuildUpdateExpr_ValuesMarshalledCorrectly(t *testing.T) {
	ue, err := buildUpdateExpr(map[string]interface{}{"price": 120.5})
	require.NoError(t, err)
	av, ok := ue.Values[":v0"]
	require.True(t, ok)
	n, isNum := av.(*types.AttributeValueMemberN)
	require.True(t, isNum)
	assert.Equal(t, "120.5", n.Value)
}

func TestBuildUpdateExpr_EmptyMap_ReturnsError(t *testing.T) {
	_, err := buildUpdateExpr(map[string]interface{}{})
	assert.ErrorContains(t, err, "no fields to update")
}

func TestCursor_RoundTrip(t *testing.T) {
	key := map[string]types.AttributeValue{
		"ad_id":      &types.AttributeValueMemberS{Value: "01HX"},
		"feed":       &types.AttributeValueMemberS{Value: feedPartition},
		"created_at": &types.AttributeValueMemberS{Value: "2024-05-01T10:00:00Z"},
	}
	c, err := encodeCursor(key)
	require.NoError(t, err)
	require.NotEmpty(t, c)

	back, err := decodeCursor(c)
	require.NoError(t, err)
	assert.Equal(t, key, back)
}

func TestCursor_EmptyKeyAndGarbage(t *testing.T) {
	c, err := encodeCursor(nil)
	require.NoError(t, err)
	assert.Empty(t, c)

	_, err = decodeCursor("%%%")
	assert.Error(t, err)
	_, err = decodeCursor("e30") // "{}"
	assert.Error(t, err)
}

func TestEncodeCursor_RejectsNonStringKeys(t *testing.T) {
	_, err := encodeCursor(map[string]types.AttributeValue{
		"n": &types.AttributeValueMemberN{Value: "1"},
	})
	assert.Error(t, err)
}
