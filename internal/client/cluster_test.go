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

func TestClusterClient_Resources(t *testing.T) {
	t.Parallel()

	t.Run("unfiltered", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/api2/json/cluster/resources", request.URL.Path)
			assert.Empty(t, request.URL.Query().Get("type"))

			_, _ = writer.Write([]byte(`{"data":[
				{"id":"qemu/100","type":"qemu","node":"pve1","vmid":100,"status":"running"},
				{"id":"storage/pve1/local","type":"storage","node":"pve1","storage":"local"}
			]}`))
		}))
		defer server.Close()

		client := newTestClient(t, server.URL, true)

		resources, err := client.Cluster().Resources(context.Background(), "")
		require.NoError(t, err)
		require.Len(t, resources, 2)
		assert.Equal(t, "qemu/100", resources[0].ID)
		assert.Equal(t, 100, resources[0].VMID)
		assert.Equal(t, "local", resources[1].Storage)
	})

	t.Run("type filter is forwarded as a query parameter", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "vm", request.URL.Query().Get("type"))

			_, _ = writer.Write([]byte(`{"data":[{"id":"qemu/100","type":"qemu"}]}`))
		}))
		defer server.Close()

		client := newTestClient(t, server.URL, true)

		resources, err := client.Cluster().Resources(context.Background(), "vm")
		require.NoError(t, err)
		assert.Len(t, resources, 1)
	})
}

func TestClusterClient_Status(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/api2/json/cluster/status", request.URL.Path)

		_, _ = writer.Write([]byte(`{"data":[
			{"id":"cluster","name":"prod","type":"cluster","quorate":1,"version":7},
			{"id":"node/pve1","name":"pve1","type":"node","ip":"10.0.0.1","online":1,"local":1,"nodeid":1}
		]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, true)

	entries, err := client.Cluster().Status(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "cluster", entries[0].Type)
	assert.Equal(t, 1, entries[0].Quorate)
	assert.Equal(t, "10.0.0.1", entries[1].IP)
	assert.Equal(t, 1, entries[1].Online)
}

func TestClusterClient_Tasks(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/api2/json/cluster/tasks", request.URL.Path)

		_, _ = writer.Write([]byte(`{"data":[
			{"upid":"UPID:pve1:0001:qmstart:100:root@pam:","node":"pve1","type":"qmstart","user":"root@pam","status":"OK","starttime":1724300000,"endtime":1724300002}
		]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, true)

	tasks, err := client.Cluster().Tasks(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "qmstart", tasks[0].Type)
	assert.Equal(t, "OK", tasks[0].Status)
	assert.Equal(t, int64(1724300002), tasks[0].EndTime)
}

// The nextid endpoint returns the id as a string on current releases and
// as a bare number on older ones.
func TestClusterClient_NextID(t *testing.T) {
	t.Parallel()

	bodies := []struct {
		name string
		body string
	}{
		{"string data", `{"data":"104"}`},
		{"numeric data", `{"data":104}`},
	}

	for _, body := range bodies {
		body := body

		t.Run(body.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				assert.Equal(t, "/api2/json/cluster/nextid", request.URL.Path)

				_, _ = writer.Write([]byte(body.body))
			}))
			defer server.Close()

			client := newTestClient(t, server.URL, true)

			id, err := client.Cluster().NextID(context.Background())
			require.NoError(t, err)
			assert.Equal(t, 104, id)
		})
	}
}

func TestClusterClient_NextID_Malformed(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		_, _ = writer.Write([]byte(`{"data":"not-a-number"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, true)

	_, err := client.Cluster().NextID(context.Background())
	require.Error(t, err)
	assert.True(t, pve.IsDecodingError(err))
}
