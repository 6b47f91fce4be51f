// Package testdata provides mock implementations for testing the tool packages.
package testdata

import (
	"context"
	"fmt"
	"time"

	"github.com/giantswarm/mcp-proxmox/internal/cluster"
	"github.com/giantswarm/mcp-proxmox/internal/proxmox"
)

// MockClient implements proxmox.Client with canned results. Every
// method returns Err when it is set, records itself in Calls, and
// otherwise returns the corresponding field.
type MockClient struct {
	VersionInfo         *proxmox.VersionInfo
	Nodes               []proxmox.Node
	NodeStatusResult    *proxmox.NodeStatus
	Bridges             []proxmox.NetworkBridge
	VMs                 []proxmox.VM
	Containers          []proxmox.Container
	VMConfigData        map[string]interface{}
	ContainerConfigData map[string]interface{}
	Storages            []proxmox.Storage
	StorageStatusResult *proxmox.Storage
	Content             []proxmox.StorageContent
	Tasks               []proxmox.Task
	TaskStatusResult    *proxmox.Task

	// UPID is returned by every lifecycle operation.
	UPID string

	// Err, when set, is returned by every call.
	Err error

	// Calls records method invocations with their arguments.
	Calls []string

	// LastFilter is the filter passed to the most recent guest listing.
	LastFilter proxmox.ListFilter
}

// Ensure MockClient implements proxmox.Client.
var _ proxmox.Client = (*MockClient)(nil)

func (m *MockClient) record(format string, args ...interface{}) {
	m.Calls = append(m.Calls, fmt.Sprintf(format, args...))
}

func (m *MockClient) Version(_ context.Context) (*proxmox.VersionInfo, error) {
	m.record("Version()")
	if m.Err != nil {
		return nil, m.Err
	}
	return m.VersionInfo, nil
}

func (m *MockClient) ListNodes(_ context.Context) ([]proxmox.Node, error) {
	m.record("ListNodes()")
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Nodes, nil
}

func (m *MockClient) NodeStatus(_ context.Context, node string) (*proxmox.NodeStatus, error) {
	m.record("NodeStatus(%s)", node)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.NodeStatusResult, nil
}

func (m *MockClient) ListBridges(_ context.Context, node string) ([]proxmox.NetworkBridge, error) {
	m.record("ListBridges(%s)", node)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Bridges, nil
}

func (m *MockClient) ListVMs(_ context.Context, filter proxmox.ListFilter) ([]proxmox.VM, error) {
	m.record("ListVMs()")
	m.LastFilter = filter
	if m.Err != nil {
		return nil, m.Err
	}
	return m.VMs, nil
}

func (m *MockClient) VMConfig(_ context.Context, node string, vmid int) (map[string]interface{}, error) {
	m.record("VMConfig(%s,%d)", node, vmid)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.VMConfigData, nil
}

func (m *MockClient) CreateVM(_ context.Context, node string, vmid int, opts proxmox.CreateVMOptions) (string, error) {
	m.record("CreateVM(%s,%d,%s)", node, vmid, opts.Name)
	if m.Err != nil {
		return "", m.Err
	}
	return m.UPID, nil
}

func (m *MockClient) CloneVM(_ context.Context, node string, vmid, newVMID int, opts proxmox.CloneVMOptions) (string, error) {
	m.record("CloneVM(%s,%d,%d)", node, vmid, newVMID)
	if m.Err != nil {
		return "", m.Err
	}
	return m.UPID, nil
}

func (m *MockClient) StartVM(_ context.Context, node string, vmid int) (string, error) {
	m.record("StartVM(%s,%d)", node, vmid)
	if m.Err != nil {
		return "", m.Err
	}
	return m.UPID, nil
}

func (m *MockClient) StopVM(_ context.Context, node string, vmid int) (string, error) {
	m.record("StopVM(%s,%d)", node, vmid)
	if m.Err != nil {
		return "", m.Err
	}
	return m.UPID, nil
}

func (m *MockClient) ShutdownVM(_ context.Context, node string, vmid int, timeoutSec int) (string, error) {
	m.record("ShutdownVM(%s,%d,%d)", node, vmid, timeoutSec)
	if m.Err != nil {
		return "", m.Err
	}
	return m.UPID, nil
}

func (m *MockClient) RebootVM(_ context.Context, node string, vmid int) (string, error) {
	m.record("RebootVM(%s,%d)", node, vmid)
	if m.Err != nil {
		return "", m.Err
	}
	return m.UPID, nil
}

func (m *MockClient) MigrateVM(_ context.Context, node string, vmid int, targetNode string, online bool) (string, error) {
	m.record("MigrateVM(%s,%d,%s,%t)", node, vmid, targetNode, online)
	if m.Err != nil {
		return "", m.Err
	}
	return m.UPID, nil
}

func (m *MockClient) DeleteVM(_ context.Context, node string, vmid int, purge bool) (string, error) {
	m.record("DeleteVM(%s,%d,%t)", node, vmid, purge)
	if m.Err != nil {
		return "", m.Err
	}
	return m.UPID, nil
}

func (m *MockClient) ResizeVMDisk(_ context.Context, node string, vmid int, disk string, sizeGB int) error {
	m.record("ResizeVMDisk(%s,%d,%s,%d)", node, vmid, disk, sizeGB)
	return m.Err
}

func (m *MockClient) ConfigureVM(_ context.Context, node string, vmid int, params map[string]string) error {
	m.record("ConfigureVM(%s,%d)", node, vmid)
	return m.Err
}

func (m *MockClient) ListContainers(_ context.Context, filter proxmox.ListFilter) ([]proxmox.Container, error) {
	m.record("ListContainers()")
	m.LastFilter = filter
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Containers, nil
}

func (m *MockClient) ContainerConfig(_ context.Context, node string, vmid int) (map[string]interface{}, error) {
	m.record("ContainerConfig(%s,%d)", node, vmid)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.ContainerConfigData, nil
}

func (m *MockClient) CreateContainer(_ context.Context, node string, vmid int, opts proxmox.CreateContainerOptions) (string, error) {
	m.record("CreateContainer(%s,%d,%s)", node, vmid, opts.Hostname)
	if m.Err != nil {
		return "", m.Err
	}
	return m.UPID, nil
}

func (m *MockClient) StartContainer(_ context.Context, node string, vmid int) (string, error) {
	m.record("StartContainer(%s,%d)", node, vmid)
	if m.Err != nil {
		return "", m.Err
	}
	return m.UPID, nil
}

func (m *MockClient) StopContainer(_ context.Context, node string, vmid int) (string, error) {
	m.record("StopContainer(%s,%d)", node, vmid)
	if m.Err != nil {
		return "", m.Err
	}
	return m.UPID, nil
}

func (m *MockClient) ShutdownContainer(_ context.Context, node string, vmid int, timeoutSec int) (string, error) {
	m.record("ShutdownContainer(%s,%d,%d)", node, vmid, timeoutSec)
	if m.Err != nil {
		return "", m.Err
	}
	return m.UPID, nil
}

func (m *MockClient) RebootContainer(_ context.Context, node string, vmid int) (string, error) {
	m.record("RebootContainer(%s,%d)", node, vmid)
	if m.Err != nil {
		return "", m.Err
	}
	return m.UPID, nil
}

func (m *MockClient) MigrateContainer(_ context.Context, node string, vmid int, targetNode string, restart bool) (string, error) {
	m.record("MigrateContainer(%s,%d,%s,%t)", node, vmid, targetNode, restart)
	if m.Err != nil {
		return "", m.Err
	}
	return m.UPID, nil
}

func (m *MockClient) DeleteContainer(_ context.Context, node string, vmid int, purge bool) (string, error) {
	m.record("DeleteContainer(%s,%d,%t)", node, vmid, purge)
	if m.Err != nil {
		return "", m.Err
	}
	return m.UPID, nil
}

func (m *MockClient) ConfigureContainer(_ context.Context, node string, vmid int, params map[string]string) error {
	m.record("ConfigureContainer(%s,%d)", node, vmid)
	return m.Err
}

func (m *MockClient) ListStorage(_ context.Context) ([]proxmox.Storage, error) {
	m.record("ListStorage()")
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Storages, nil
}

func (m *MockClient) StorageStatus(_ context.Context, node, storage string) (*proxmox.Storage, error) {
	m.record("StorageStatus(%s,%s)", node, storage)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.StorageStatusResult, nil
}

func (m *MockClient) StorageContent(_ context.Context, node, storage string) ([]proxmox.StorageContent, error) {
	m.record("StorageContent(%s,%s)", node, storage)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Content, nil
}

func (m *MockClient) ListTasks(_ context.Context, node string, limit int) ([]proxmox.Task, error) {
	m.record("ListTasks(%s,%d)", node, limit)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Tasks, nil
}

func (m *MockClient) TaskStatus(_ context.Context, node, upid string) (*proxmox.Task, error) {
	m.record("TaskStatus(%s,%s)", node, upid)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.TaskStatusResult, nil
}

func (m *MockClient) WaitForTask(_ context.Context, node, upid string, _ time.Duration) (*proxmox.Task, error) {
	m.record("WaitForTask(%s,%s)", node, upid)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.TaskStatusResult, nil
}

// MockRegistry implements cluster.ClusterRegistry and hands out a
// single MockClient regardless of the selected cluster.
type MockRegistry struct {
	Clusters []cluster.ClusterConfig
	Client   proxmox.Client
	GetErr   error
}

// Ensure MockRegistry implements ClusterRegistry.
var _ cluster.ClusterRegistry = (*MockRegistry)(nil)

// NewMockRegistry builds a registry with one cluster per name; the
// first name is the default cluster.
func NewMockRegistry(client proxmox.Client, names ...string) *MockRegistry {
	r := &MockRegistry{Client: client}
	for _, name := range names {
		r.Clusters = append(r.Clusters, cluster.ClusterConfig{
			Name:   name,
			APIURL: "https://" + name + ".example.com:8006",
		})
	}
	return r
}

// GetClient implements cluster.ClusterRegistry.
func (r *MockRegistry) GetClient(_ context.Context, clusterName, _ string) (proxmox.Client, string, error) {
	if r.GetErr != nil {
		return nil, "", r.GetErr
	}
	if clusterName == "" {
		return r.Client, r.DefaultCluster(), nil
	}
	for _, c := range r.Clusters {
		if c.Name == clusterName {
			return r.Client, c.Name, nil
		}
	}
	return nil, "", &cluster.ClusterNotFoundError{ClusterName: clusterName}
}

// ClusterFor implements cluster.ClusterRegistry.
func (r *MockRegistry) ClusterFor(clusterName, _ string) (cluster.ClusterConfig, error) {
	for _, c := range r.Clusters {
		if c.Name == clusterName {
			return c, nil
		}
	}
	return cluster.ClusterConfig{}, &cluster.ClusterNotFoundError{ClusterName: clusterName}
}

// ListClusters implements cluster.ClusterRegistry.
func (r *MockRegistry) ListClusters() []cluster.ClusterConfig {
	return r.Clusters
}

// Describe implements cluster.ClusterRegistry.
func (r *MockRegistry) Describe(clusterName string) (cluster.ClusterConfig, error) {
	return r.ClusterFor(clusterName, "")
}

// DefaultCluster implements cluster.ClusterRegistry.
func (r *MockRegistry) DefaultCluster() string {
	if len(r.Clusters) == 0 {
		return ""
	}
	return r.Clusters[0].Name
}

// InvalidateClient implements cluster.ClusterRegistry.
func (r *MockRegistry) InvalidateClient(_ context.Context, _ string) {}

// InvalidateAll implements cluster.ClusterRegistry.
func (r *MockRegistry) InvalidateAll(_ context.Context) {}

// ValidateAll implements cluster.ClusterRegistry.
func (r *MockRegistry) ValidateAll(_ context.Context) map[string]cluster.ValidationResult {
	return map[string]cluster.ValidationResult{}
}

// AggregateStatus implements cluster.ClusterRegistry.
func (r *MockRegistry) AggregateStatus(_ context.Context) map[string]cluster.ClusterStatus {
	return map[string]cluster.ClusterStatus{}
}

// CacheStats implements cluster.ClusterRegistry.
func (r *MockRegistry) CacheStats() cluster.CacheStats {
	return cluster.CacheStats{}
}

// Close implements cluster.ClusterRegistry.
func (r *MockRegistry) Close() error {
	return nil
}
