package proxmox

import (
	"context"
	"time"
)

// OperationRecorder receives one observation per API call made through
// an instrumented client. *instrumentation.Metrics satisfies it.
type OperationRecorder interface {
	RecordProxmoxOperation(ctx context.Context, operation, cluster, status string, duration time.Duration)
}

// Instrument wraps a client so that every API call is recorded against
// the given cluster name. A nil recorder returns the client unwrapped.
func Instrument(client Client, cluster string, recorder OperationRecorder) Client {
	if recorder == nil {
		return client
	}
	return &instrumentedClient{client: client, cluster: cluster, recorder: recorder}
}

type instrumentedClient struct {
	client   Client
	cluster  string
	recorder OperationRecorder
}

func (ic *instrumentedClient) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	ic.recorder.RecordProxmoxOperation(ctx, operation, ic.cluster, status, time.Since(start))
}

func (ic *instrumentedClient) Version(ctx context.Context) (*VersionInfo, error) {
	start := time.Now()
	v, err := ic.client.Version(ctx)
	ic.record(ctx, "version", start, err)
	return v, err
}

func (ic *instrumentedClient) ListNodes(ctx context.Context) ([]Node, error) {
	start := time.Now()
	nodes, err := ic.client.ListNodes(ctx)
	ic.record(ctx, "list_nodes", start, err)
	return nodes, err
}

func (ic *instrumentedClient) NodeStatus(ctx context.Context, node string) (*NodeStatus, error) {
	start := time.Now()
	status, err := ic.client.NodeStatus(ctx, node)
	ic.record(ctx, "node_status", start, err)
	return status, err
}

func (ic *instrumentedClient) ListBridges(ctx context.Context, node string) ([]NetworkBridge, error) {
	start := time.Now()
	bridges, err := ic.client.ListBridges(ctx, node)
	ic.record(ctx, "list_bridges", start, err)
	return bridges, err
}

func (ic *instrumentedClient) ListVMs(ctx context.Context, filter ListFilter) ([]VM, error) {
	start := time.Now()
	vms, err := ic.client.ListVMs(ctx, filter)
	ic.record(ctx, "list_vms", start, err)
	return vms, err
}

func (ic *instrumentedClient) VMConfig(ctx context.Context, node string, vmid int) (map[string]interface{}, error) {
	start := time.Now()
	config, err := ic.client.VMConfig(ctx, node, vmid)
	ic.record(ctx, "vm_config", start, err)
	return config, err
}

func (ic *instrumentedClient) CreateVM(ctx context.Context, node string, vmid int, opts CreateVMOptions) (string, error) {
	start := time.Now()
	upid, err := ic.client.CreateVM(ctx, node, vmid, opts)
	ic.record(ctx, "create_vm", start, err)
	return upid, err
}

func (ic *instrumentedClient) CloneVM(ctx context.Context, node string, vmid, newVMID int, opts CloneVMOptions) (string, error) {
	start := time.Now()
	upid, err := ic.client.CloneVM(ctx, node, vmid, newVMID, opts)
	ic.record(ctx, "clone_vm", start, err)
	return upid, err
}

func (ic *instrumentedClient) StartVM(ctx context.Context, node string, vmid int) (string, error) {
	start := time.Now()
	upid, err := ic.client.StartVM(ctx, node, vmid)
	ic.record(ctx, "start_vm", start, err)
	return upid, err
}

func (ic *instrumentedClient) StopVM(ctx context.Context, node string, vmid int) (string, error) {
	start := time.Now()
	upid, err := ic.client.StopVM(ctx, node, vmid)
	ic.record(ctx, "stop_vm", start, err)
	return upid, err
}

func (ic *instrumentedClient) ShutdownVM(ctx context.Context, node string, vmid int, timeoutSec int) (string, error) {
	start := time.Now()
	upid, err := ic.client.ShutdownVM(ctx, node, vmid, timeoutSec)
	ic.record(ctx, "shutdown_vm", start, err)
	return upid, err
}

func (ic *instrumentedClient) RebootVM(ctx context.Context, node string, vmid int) (string, error) {
	start := time.Now()
	upid, err := ic.client.RebootVM(ctx, node, vmid)
	ic.record(ctx, "reboot_vm", start, err)
	return upid, err
}

func (ic *instrumentedClient) MigrateVM(ctx context.Context, node string, vmid int, targetNode string, online bool) (string, error) {
	start := time.Now()
	upid, err := ic.client.MigrateVM(ctx, node, vmid, targetNode, online)
	ic.record(ctx, "migrate_vm", start, err)
	return upid, err
}

func (ic *instrumentedClient) DeleteVM(ctx context.Context, node string, vmid int, purge bool) (string, error) {
	start := time.Now()
	upid, err := ic.client.DeleteVM(ctx, node, vmid, purge)
	ic.record(ctx, "delete_vm", start, err)
	return upid, err
}

func (ic *instrumentedClient) ResizeVMDisk(ctx context.Context, node string, vmid int, disk string, sizeGB int) error {
	start := time.Now()
	err := ic.client.ResizeVMDisk(ctx, node, vmid, disk, sizeGB)
	ic.record(ctx, "resize_vm_disk", start, err)
	return err
}

func (ic *instrumentedClient) ConfigureVM(ctx context.Context, node string, vmid int, params map[string]string) error {
	start := time.Now()
	err := ic.client.ConfigureVM(ctx, node, vmid, params)
	ic.record(ctx, "configure_vm", start, err)
	return err
}

func (ic *instrumentedClient) ListContainers(ctx context.Context, filter ListFilter) ([]Container, error) {
	start := time.Now()
	containers, err := ic.client.ListContainers(ctx, filter)
	ic.record(ctx, "list_containers", start, err)
	return containers, err
}

func (ic *instrumentedClient) ContainerConfig(ctx context.Context, node string, vmid int) (map[string]interface{}, error) {
	start := time.Now()
	config, err := ic.client.ContainerConfig(ctx, node, vmid)
	ic.record(ctx, "container_config", start, err)
	return config, err
}

func (ic *instrumentedClient) CreateContainer(ctx context.Context, node string, vmid int, opts CreateContainerOptions) (string, error) {
	start := time.Now()
	upid, err := ic.client.CreateContainer(ctx, node, vmid, opts)
	ic.record(ctx, "create_container", start, err)
	return upid, err
}

func (ic *instrumentedClient) StartContainer(ctx context.Context, node string, vmid int) (string, error) {
	start := time.Now()
	upid, err := ic.client.StartContainer(ctx, node, vmid)
	ic.record(ctx, "start_container", start, err)
	return upid, err
}

func (ic *instrumentedClient) StopContainer(ctx context.Context, node string, vmid int) (string, error) {
	start := time.Now()
	upid, err := ic.client.StopContainer(ctx, node, vmid)
	ic.record(ctx, "stop_container", start, err)
	return upid, err
}

func (ic *instrumentedClient) ShutdownContainer(ctx context.Context, node string, vmid int, timeoutSec int) (string, error) {
	start := time.Now()
	upid, err := ic.client.ShutdownContainer(ctx, node, vmid, timeoutSec)
	ic.record(ctx, "shutdown_container", start, err)
	return upid, err
}

func (ic *instrumentedClient) RebootContainer(ctx context.Context, node string, vmid int) (string, error) {
	start := time.Now()
	upid, err := ic.client.RebootContainer(ctx, node, vmid)
	ic.record(ctx, "reboot_container", start, err)
	return upid, err
}

func (ic *instrumentedClient) MigrateContainer(ctx context.Context, node string, vmid int, targetNode string, restart bool) (string, error) {
	start := time.Now()
	upid, err := ic.client.MigrateContainer(ctx, node, vmid, targetNode, restart)
	ic.record(ctx, "migrate_container", start, err)
	return upid, err
}

func (ic *instrumentedClient) DeleteContainer(ctx context.Context, node string, vmid int, purge bool) (string, error) {
	start := time.Now()
	upid, err := ic.client.DeleteContainer(ctx, node, vmid, purge)
	ic.record(ctx, "delete_container", start, err)
	return upid, err
}

func (ic *instrumentedClient) ConfigureContainer(ctx context.Context, node string, vmid int, params map[string]string) error {
	start := time.Now()
	err := ic.client.ConfigureContainer(ctx, node, vmid, params)
	ic.record(ctx, "configure_container", start, err)
	return err
}

func (ic *instrumentedClient) ListStorage(ctx context.Context) ([]Storage, error) {
	start := time.Now()
	storages, err := ic.client.ListStorage(ctx)
	ic.record(ctx, "list_storage", start, err)
	return storages, err
}

func (ic *instrumentedClient) StorageStatus(ctx context.Context, node, storage string) (*Storage, error) {
	start := time.Now()
	status, err := ic.client.StorageStatus(ctx, node, storage)
	ic.record(ctx, "storage_status", start, err)
	return status, err
}

func (ic *instrumentedClient) StorageContent(ctx context.Context, node, storage string) ([]StorageContent, error) {
	start := time.Now()
	content, err := ic.client.StorageContent(ctx, node, storage)
	ic.record(ctx, "storage_content", start, err)
	return content, err
}

func (ic *instrumentedClient) ListTasks(ctx context.Context, node string, limit int) ([]Task, error) {
	start := time.Now()
	tasks, err := ic.client.ListTasks(ctx, node, limit)
	ic.record(ctx, "list_tasks", start, err)
	return tasks, err
}

func (ic *instrumentedClient) TaskStatus(ctx context.Context, node, upid string) (*Task, error) {
	start := time.Now()
	task, err := ic.client.TaskStatus(ctx, node, upid)
	ic.record(ctx, "task_status", start, err)
	return task, err
}

func (ic *instrumentedClient) WaitForTask(ctx context.Context, node, upid string, interval time.Duration) (*Task, error) {
	start := time.Now()
	task, err := ic.client.WaitForTask(ctx, node, upid, interval)
	ic.record(ctx, "wait_for_task", start, err)
	return task, err
}
