package metrics

import (
	"database/sql"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestUpdateDBPoolStats(t *testing.T) {
	UpdateDBPoolStats(sql.DBStats{InUse: 2, Idle: 5, MaxOpenConnections: 100})

	require.Equal(t, 2.0, testutil.ToFloat64(DBConnectionPoolSize.WithLabelValues("active")))
	require.Equal(t, 5.0, testutil.ToFloat64(DBConnectionPoolSize.WithLabelValues("idle")))
	require.Equal(t, 100.0, testutil.ToFloat64(DBConnectionPoolSize.WithLabelValues("max")))
}

func TestUpstreamFailuresByCollaborator(t *testing.T) {
	before := testutil.ToFloat64(UpstreamFailures.WithLabelValues("embedder"))
	UpstreamFailures.WithLabelValues("embedder").Inc()
	require.Equal(t, before+1, testutil.ToFloat64(UpstreamFailures.WithLabelValues("embedder")))
}
