package proxmox

// VersionInfo describes the Proxmox VE version of a cluster.
// It is the response of GET /version and doubles as the minimal
// reachability probe for health checks.
type VersionInfo struct {
	Version string `json:"version"`
	Release string `json:"release"`
	RepoID  string `json:"repoid"`
}

// Node is one physical host in a Proxmox cluster.
type Node struct {
	Node          string  `json:"node"`
	Status        string  `json:"status"`
	CPU           float64 `json:"cpu"`
	MaxCPU        int     `json:"maxcpu"`
	Mem           int64   `json:"mem"`
	MaxMem        int64   `json:"maxmem"`
	Disk          int64   `json:"disk"`
	MaxDisk       int64   `json:"maxdisk"`
	Uptime        int64   `json:"uptime"`
	SSLFingerprint string `json:"ssl_fingerprint,omitempty"`
}

// NodeStatus is the detailed status of a single node.
type NodeStatus struct {
	Uptime  int64     `json:"uptime"`
	LoadAvg []string  `json:"loadavg"`
	CPU     float64   `json:"cpu"`
	Memory  NodeUsage `json:"memory"`
	Swap    NodeUsage `json:"swap"`
	RootFS  NodeUsage `json:"rootfs"`
	KVersion string   `json:"kversion"`
	PVEVersion string `json:"pveversion"`
}

// NodeUsage is a used/total pair reported by node status.
type NodeUsage struct {
	Used  int64 `json:"used"`
	Total int64 `json:"total"`
	Free  int64 `json:"free"`
}

// VM is a QEMU virtual machine.
type VM struct {
	VMID     int     `json:"vmid"`
	Name     string  `json:"name"`
	Node     string  `json:"node,omitempty"`
	Status   string  `json:"status"`
	CPU      float64 `json:"cpu"`
	CPUs     int     `json:"cpus"`
	Mem      int64   `json:"mem"`
	MaxMem   int64   `json:"maxmem"`
	MaxDisk  int64   `json:"maxdisk"`
	Uptime   int64   `json:"uptime"`
	Template int     `json:"template"`
	Tags     string  `json:"tags,omitempty"`
}

// Container is an LXC container.
type Container struct {
	VMID     int     `json:"vmid"`
	Name     string  `json:"name"`
	Node     string  `json:"node,omitempty"`
	Status   string  `json:"status"`
	CPU      float64 `json:"cpu"`
	CPUs     int     `json:"cpus"`
	Mem      int64   `json:"mem"`
	MaxMem   int64   `json:"maxmem"`
	MaxDisk  int64   `json:"maxdisk"`
	Uptime   int64   `json:"uptime"`
	Template int     `json:"template"`
	Tags     string  `json:"tags,omitempty"`
}

// Storage is one storage backend visible to a node or cluster.
type Storage struct {
	Storage string `json:"storage"`
	Type    string `json:"type"`
	Node    string `json:"node,omitempty"`
	Content string `json:"content"`
	Active  int    `json:"active"`
	Enabled int    `json:"enabled"`
	Shared  int    `json:"shared"`
	Total   int64  `json:"total"`
	Used    int64  `json:"used"`
	Avail   int64  `json:"avail"`
}

// NetworkBridge is one Linux or OVS bridge on a node. Guests attach
// their network interfaces to a bridge.
type NetworkBridge struct {
	Iface     string `json:"iface"`
	Type      string `json:"type"`
	Active    int    `json:"active,omitempty"`
	Autostart int    `json:"autostart,omitempty"`
	CIDR      string `json:"cidr,omitempty"`
	Address   string `json:"address,omitempty"`
	Gateway   string `json:"gateway,omitempty"`
	Ports     string `json:"bridge_ports,omitempty"`
	VLANAware int    `json:"bridge_vlan_aware,omitempty"`
	Comments  string `json:"comments,omitempty"`
}

// StorageContent is one volume stored on a storage backend.
type StorageContent struct {
	VolID   string `json:"volid"`
	Content string `json:"content"`
	Format  string `json:"format"`
	Size    int64  `json:"size"`
	VMID    int    `json:"vmid,omitempty"`
	CTime   int64  `json:"ctime,omitempty"`
}

// Task is an asynchronous Proxmox task. Long-running operations
// (create, clone, migrate, ...) return a UPID that identifies a Task.
type Task struct {
	UPID       string `json:"upid"`
	Node       string `json:"node"`
	Type       string `json:"type"`
	ID         string `json:"id"`
	User       string `json:"user"`
	Status     string `json:"status"`
	ExitStatus string `json:"exitstatus,omitempty"`
	StartTime  int64  `json:"starttime"`
	EndTime    int64  `json:"endtime,omitempty"`
}

// Finished reports whether the task has completed (successfully or not).
func (t Task) Finished() bool {
	return t.Status == "stopped"
}

// Succeeded reports whether the task completed without error.
func (t Task) Succeeded() bool {
	return t.Finished() && t.ExitStatus == "OK"
}

// CreateVMOptions holds parameters for creating a QEMU VM.
// Zero values fall back to server-side or client defaults.
type CreateVMOptions struct {
	Name     string
	Cores    int
	MemoryMB int
	DiskGB   int
	Storage  string
	Bridge   string
	ISO      string
	SCSIHw   string
	OSType   string
	Agent    bool
}

// CloneVMOptions holds parameters for cloning a QEMU VM.
type CloneVMOptions struct {
	TargetNode string
	Name       string
	Full       bool
	Storage    string
}

// CreateContainerOptions holds parameters for creating an LXC container.
type CreateContainerOptions struct {
	Hostname   string
	OSTemplate string
	Cores      int
	MemoryMB   int
	RootFSGB   int
	Storage    string
	Bridge     string
	NetIP      string
	Password   string
}

// ListFilter narrows guest listings.
type ListFilter struct {
	// Node restricts results to one node. Empty means all nodes.
	Node string
	// Status filters by guest status ("running", "stopped"). Empty means all.
	Status string
	// Search is a case-insensitive substring match on the guest name.
	Search string
}
