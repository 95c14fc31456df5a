package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/virtstack-io/pve-client/pkg/pve"
)

func TestNodesClient_List(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/api2/json/nodes", request.URL.Path)
		assert.Equal(t, "GET", request.Method)

		_, _ = writer.Write([]byte(`{"data":[
			{"node":"pve1","status":"online","maxcpu":16,"mem":8589934592,"uptime":3600},
			{"node":"pve2","status":"offline"}
		]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, true)

	nodes, err := client.Nodes().List(context.Background())
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Equal(t, "pve1", nodes[0].Node)
	assert.Equal(t, "online", nodes[0].Status)
	assert.Equal(t, 16, nodes[0].MaxCPU)
	assert.Equal(t, int64(8589934592), nodes[0].Mem)
	assert.Equal(t, "offline", nodes[1].Status)
}

func TestNodesClient_Get(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		_, _ = writer.Write([]byte(`{"data":[{"node":"pve1","status":"online"}]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, true)

	node, err := client.Nodes().Get(context.Background(), "pve1")
	require.NoError(t, err)
	assert.Equal(t, "pve1", node.Node)

	_, err = client.Nodes().Get(context.Background(), "pve9")
	require.Error(t, err)
	assert.True(t, pve.IsNotFound(err))
	assert.Contains(t, err.Error(), "pve9")
}

func TestNodesClient_Status(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/api2/json/nodes/pve1/status", request.URL.Path)

		_, _ = writer.Write([]byte(`{"data":{
			"uptime":86400,
			"cpu":0.05,
			"loadavg":["0.10","0.15","0.20"],
			"pveversion":"pve-manager/8.2.4",
			"memory":{"total":34359738368,"used":17179869184,"free":17179869184},
			"swap":{"total":8589934592,"used":0,"free":8589934592},
			"rootfs":{"total":107374182400,"used":21474836480,"avail":85899345920,"free":85899345920}
		}}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, true)

	status, err := client.Nodes().Status(context.Background(), "pve1")
	require.NoError(t, err)
	assert.Equal(t, int64(86400), status.Uptime)
	assert.Equal(t, "pve-manager/8.2.4", status.PVEVersion)
	assert.Equal(t, int64(34359738368), status.Memory.Total)
	assert.Equal(t, int64(85899345920), status.RootFS.Avail)
}

func TestNodesClient_Status_UnknownNode(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, true)

	_, err := client.Nodes().Status(context.Background(), "pve9")
	require.Error(t, err)
	assert.True(t, pve.IsNotFound(err))
	assert.Contains(t, err.Error(), "node pve9")

	// A lookup miss does not invalidate the session.
	assert.True(t, client.IsAuthenticated())
}
