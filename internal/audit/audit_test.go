package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jserwatka/network/pkg/log"
)

func TestLogTarget(t *testing.T) {
	var buf bytes.Buffer
	ctx := log.WithLogger(context.Background(), log.NewWithWriter(log.Config{Level: "info"}, &buf))

	LogTarget(ctx, ActionPostCreate, 7, 42, "post created")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, log.LogTypeAudit, entry[log.FieldLogType])
	assert.Equal(t, ActionPostCreate, entry[FieldAction])
	assert.EqualValues(t, 7, entry[log.FieldUserID])
	assert.EqualValues(t, 42, entry[FieldTargetID])
	assert.Equal(t, "post created", entry["message"])
}
