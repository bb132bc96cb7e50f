package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringList(t *testing.T) {
	t.Run("数组", func(t *testing.T) {
		var req PublishBookRequest
		require.NoError(t, json.Unmarshal([]byte(`{"authors":["A","B"],"price":"10.50"}`), &req))
		assert.Equal(t, StringList{"A", "B"}, req.Authors)
		assert.Equal(t, "10.50", req.Price.StringFixed(2))
	})

	t.Run("逗号分隔的字符串", func(t *testing.T) {
		var req PublishBookRequest
		require.NoError(t, json.Unmarshal([]byte(`{"authors":"A, B","price":10.5}`), &req))
		assert.Equal(t, StringList{"A", "B"}, req.Authors)
		assert.Equal(t, "10.50", req.Price.StringFixed(2))
	})

	t.Run("类型错误", func(t *testing.T) {
		var l StringList
		assert.Error(t, json.Unmarshal([]byte(`123`), &l))
	})
}
