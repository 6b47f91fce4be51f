package proxmox

import (
	"context"
	"time"
)

// Client defines the interface for operations against one Proxmox VE
// cluster. It is composed of per-area manager interfaces so tests can
// implement only the slice they need.
//
// All methods accept a context for cancellation; network timeouts are
// owned by the caller, not this package.
type Client interface {
	// Version returns the cluster's Proxmox VE version. It is the
	// minimal reachability probe used by health checks.
	Version(ctx context.Context) (*VersionInfo, error)

	NodeManager
	GuestManager
	StorageManager
	TaskManager
}

// NodeManager handles node discovery and status operations.
type NodeManager interface {
	// ListNodes returns all nodes in the cluster.
	ListNodes(ctx context.Context) ([]Node, error)

	// NodeStatus returns detailed status for a single node.
	NodeStatus(ctx context.Context, node string) (*NodeStatus, error)

	// ListBridges returns the network bridges configured on a node,
	// sorted by interface name.
	ListBridges(ctx context.Context, node string) ([]NetworkBridge, error)
}

// GuestManager handles QEMU VM and LXC container operations.
// Lifecycle methods return the UPID of the asynchronous Proxmox task
// they started.
type GuestManager interface {
	// ListVMs returns QEMU VMs across the cluster, optionally filtered.
	ListVMs(ctx context.Context, filter ListFilter) ([]VM, error)

	// VMConfig returns the raw configuration of a VM.
	VMConfig(ctx context.Context, node string, vmid int) (map[string]interface{}, error)

	// CreateVM creates a new QEMU VM.
	CreateVM(ctx context.Context, node string, vmid int, opts CreateVMOptions) (string, error)

	// CloneVM clones an existing VM or template.
	CloneVM(ctx context.Context, node string, vmid, newVMID int, opts CloneVMOptions) (string, error)

	// StartVM starts a VM.
	StartVM(ctx context.Context, node string, vmid int) (string, error)

	// StopVM hard-stops a VM.
	StopVM(ctx context.Context, node string, vmid int) (string, error)

	// ShutdownVM requests a guest-cooperative shutdown.
	ShutdownVM(ctx context.Context, node string, vmid int, timeoutSec int) (string, error)

	// RebootVM reboots a VM.
	RebootVM(ctx context.Context, node string, vmid int) (string, error)

	// MigrateVM migrates a VM to another node.
	MigrateVM(ctx context.Context, node string, vmid int, targetNode string, online bool) (string, error)

	// DeleteVM destroys a VM. Destructive; callers gate it behind
	// explicit confirmation.
	DeleteVM(ctx context.Context, node string, vmid int, purge bool) (string, error)

	// ResizeVMDisk grows a VM disk by the given number of gigabytes.
	ResizeVMDisk(ctx context.Context, node string, vmid int, disk string, sizeGB int) error

	// ConfigureVM applies configuration parameters to a VM.
	ConfigureVM(ctx context.Context, node string, vmid int, params map[string]string) error

	// ListContainers returns LXC containers across the cluster, optionally filtered.
	ListContainers(ctx context.Context, filter ListFilter) ([]Container, error)

	// ContainerConfig returns the raw configuration of a container.
	ContainerConfig(ctx context.Context, node string, vmid int) (map[string]interface{}, error)

	// CreateContainer creates a new LXC container.
	CreateContainer(ctx context.Context, node string, vmid int, opts CreateContainerOptions) (string, error)

	// StartContainer starts a container.
	StartContainer(ctx context.Context, node string, vmid int) (string, error)

	// StopContainer hard-stops a container.
	StopContainer(ctx context.Context, node string, vmid int) (string, error)

	// ShutdownContainer requests a clean container shutdown.
	ShutdownContainer(ctx context.Context, node string, vmid int, timeoutSec int) (string, error)

	// RebootContainer reboots a container.
	RebootContainer(ctx context.Context, node string, vmid int) (string, error)

	// MigrateContainer migrates a container to another node. Running
	// containers are restarted on the target when restart is set.
	MigrateContainer(ctx context.Context, node string, vmid int, targetNode string, restart bool) (string, error)

	// DeleteContainer destroys a container. Destructive; callers gate
	// it behind explicit confirmation.
	DeleteContainer(ctx context.Context, node string, vmid int, purge bool) (string, error)

	// ConfigureContainer applies configuration parameters to a container.
	ConfigureContainer(ctx context.Context, node string, vmid int, params map[string]string) error
}

// StorageManager handles storage discovery operations.
type StorageManager interface {
	// ListStorage returns all storage backends defined in the cluster.
	ListStorage(ctx context.Context) ([]Storage, error)

	// StorageStatus returns the status of one storage on one node.
	StorageStatus(ctx context.Context, node, storage string) (*Storage, error)

	// StorageContent lists volumes stored on one storage backend.
	StorageContent(ctx context.Context, node, storage string) ([]StorageContent, error)
}

// TaskManager handles asynchronous task tracking.
type TaskManager interface {
	// ListTasks returns recent tasks, newest first. A zero limit uses
	// the server default.
	ListTasks(ctx context.Context, node string, limit int) ([]Task, error)

	// TaskStatus returns the current status of a task by UPID.
	TaskStatus(ctx context.Context, node, upid string) (*Task, error)

	// WaitForTask polls a task until it finishes or the context is
	// canceled. A zero interval uses a client default.
	WaitForTask(ctx context.Context, node, upid string, interval time.Duration) (*Task, error)
}
