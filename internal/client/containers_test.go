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

func TestContainersClient_List(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/api2/json/nodes/pve1/lxc", request.URL.Path)
		assert.Equal(t, "GET", request.Method)

		// The lxc listing reports vmid as a JSON string.
		_, _ = writer.Write([]byte(`{"data":[
			{"vmid":"200","name":"proxy","status":"running","tags":"edge;prod"},
			{"vmid":"201","name":"cache","status":"stopped"}
		]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, true)

	containers, err := client.Containers().List(context.Background(), "pve1")
	require.NoError(t, err)
	require.Len(t, containers, 2)
	assert.EqualValues(t, 200, containers[0].VMID)
	assert.Equal(t, "proxy", containers[0].Name)
	assert.Equal(t, "edge;prod", containers[0].Tags)
	assert.Equal(t, "stopped", containers[1].Status)
}

func TestContainersClient_Get(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/api2/json/nodes/pve1/lxc", request.URL.Path)

		_, _ = writer.Write([]byte(`{"data":[{"vmid":"200","name":"proxy","status":"running"}]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, true)

	container, err := client.Containers().Get(context.Background(), "pve1", 200)
	require.NoError(t, err)
	assert.EqualValues(t, 200, container.VMID)
	assert.Equal(t, "proxy", container.Name)

	_, err = client.Containers().Get(context.Background(), "pve1", 999)
	require.Error(t, err)
	assert.True(t, pve.IsNotFound(err))
	assert.Contains(t, err.Error(), "container 999 on node pve1")
}

func TestContainersClient_Current(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/api2/json/nodes/pve1/lxc/200/status/current", request.URL.Path)

		_, _ = writer.Write([]byte(`{"data":{"vmid":"200","name":"proxy","status":"running","ha":{"managed":0}}}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, true)

	status, err := client.Containers().Current(context.Background(), "pve1", 200)
	require.NoError(t, err)
	assert.EqualValues(t, 200, status.VMID)
	require.NotNil(t, status.HA)
	assert.Zero(t, status.HA.Managed)
}

func TestContainersClient_Current_UnknownContainer(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, true)

	_, err := client.Containers().Current(context.Background(), "pve1", 999)
	require.Error(t, err)
	assert.True(t, pve.IsNotFound(err))
	assert.Contains(t, err.Error(), "container 999 on node pve1")
	assert.True(t, client.IsAuthenticated())
}

func TestContainersClient_StatusActions(t *testing.T) {
	t.Parallel()

	actions := []struct {
		name string
		call func(pve.ContainersClient, context.Context) (pve.UPID, error)
	}{
		{"start", func(c pve.ContainersClient, ctx context.Context) (pve.UPID, error) { return c.Start(ctx, "pve1", 200) }},
		{"stop", func(c pve.ContainersClient, ctx context.Context) (pve.UPID, error) { return c.Stop(ctx, "pve1", 200) }},
		{"shutdown", func(c pve.ContainersClient, ctx context.Context) (pve.UPID, error) {
			return c.Shutdown(ctx, "pve1", 200)
		}},
	}

	for _, action := range actions {
		action := action

		t.Run(action.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				assert.Equal(t, "/api2/json/nodes/pve1/lxc/200/status/"+action.name, request.URL.Path)
				assert.Equal(t, "POST", request.Method)
				assert.Equal(t, "XYZ", request.Header.Get("CSRFPreventionToken"))

				_, _ = writer.Write([]byte(`{"data":"UPID:pve1:0004:vz` + action.name + `:200:root@pam:"}`))
			}))
			defer server.Close()

			client := newTestClient(t, server.URL, true)

			upid, err := action.call(client.Containers(), context.Background())
			require.NoError(t, err)
			assert.Contains(t, string(upid), "UPID:pve1")
		})
	}
}

func TestContainersClient_Create(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/api2/json/nodes/pve1/lxc", request.URL.Path)
		assert.Equal(t, "POST", request.Method)

		err := request.ParseForm()
		require.NoError(t, err)
		assert.Equal(t, "202", request.PostForm.Get("vmid"))
		assert.Equal(t, "local:vztmpl/debian-12.tar.zst", request.PostForm.Get("ostemplate"))

		_, _ = writer.Write([]byte(`{"data":"UPID:pve1:0005:vzcreate:202:root@pam:"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, true)

	upid, err := client.Containers().Create(context.Background(), "pve1", map[string]string{
		"vmid":       "202",
		"ostemplate": "local:vztmpl/debian-12.tar.zst",
	})
	require.NoError(t, err)
	assert.Contains(t, string(upid), "vzcreate")
}

func TestContainersClient_UpdateAndDelete(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/api2/json/nodes/pve1/lxc/200/config", func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "PUT", request.Method)

		err := request.ParseForm()
		require.NoError(t, err)
		assert.Equal(t, "2", request.PostForm.Get("cores"))

		_, _ = writer.Write([]byte(`{"data":null}`))
	})
	mux.HandleFunc("/api2/json/nodes/pve1/lxc/200", func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "DELETE", request.Method)

		_, _ = writer.Write([]byte(`{"data":"UPID:pve1:0006:vzdestroy:200:root@pam:"}`))
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server.URL, true)

	err := client.Containers().Update(context.Background(), "pve1", 200, map[string]string{"cores": "2"})
	require.NoError(t, err)

	upid, err := client.Containers().Delete(context.Background(), "pve1", 200)
	require.NoError(t, err)
	assert.Contains(t, string(upid), "vzdestroy")
}
