package proxmox

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DefaultAPIPort is the port Proxmox VE listens on when the API URL
// does not specify one.
const DefaultAPIPort = 8006

// DefaultTimeout bounds individual HTTP requests when the config does
// not override it. Context deadlines shorter than this still apply.
const DefaultTimeout = 30 * time.Second

// Config holds connection parameters for one Proxmox VE cluster.
type Config struct {
	// APIURL is the base URL, e.g. "https://pve1.example.com:8006".
	// A trailing "/api2/json" suffix is accepted and stripped.
	APIURL string

	// TokenID is the API token identity, "user@realm!tokenname".
	TokenID string

	// TokenSecret is the API token secret. Never logged.
	TokenSecret string

	// InsecureSkipVerify disables TLS certificate verification.
	// Common for Proxmox installations with self-signed certificates.
	InsecureSkipVerify bool

	// Timeout bounds each HTTP request. Zero means DefaultTimeout.
	Timeout time.Duration
}

// APIError is returned when the Proxmox API responds with a non-2xx
// status code.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("proxmox api: %s: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("proxmox api: %s", e.Status)
}

// HTTPClient implements Client against the Proxmox VE REST API.
type HTTPClient struct {
	baseURL    string
	authHeader string
	hc         *http.Client
}

// Ensure HTTPClient implements Client.
var _ Client = (*HTTPClient)(nil)

// ParseAPIURL normalizes a configured API URL to "scheme://host:port".
// It accepts forms like "https://host:8006", "https://host" and
// "https://host:8006/api2/json".
func ParseAPIURL(raw string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("invalid API URL %q: %w", raw, err)
	}
	if parsed.Scheme == "" || parsed.Hostname() == "" {
		return "", fmt.Errorf("invalid API URL %q: scheme and host are required", raw)
	}
	port := parsed.Port()
	if port == "" {
		port = strconv.Itoa(DefaultAPIPort)
	}
	return fmt.Sprintf("%s://%s:%s", parsed.Scheme, parsed.Hostname(), port), nil
}

// SplitTokenID splits a token ID of the form "user@realm!tokenname".
func SplitTokenID(tokenID string) (user, tokenName string, err error) {
	user, tokenName, ok := strings.Cut(tokenID, "!")
	if !ok {
		return "", "", fmt.Errorf("token ID must include '!' separating user and token name, e.g. root@pam!mcp")
	}
	if !strings.Contains(user, "@") {
		return "", "", fmt.Errorf("token ID user part must include '@realm', e.g. root@pam!mcp")
	}
	return user, tokenName, nil
}

// Connect builds an HTTPClient from the given config. It validates the
// configuration but performs no network I/O; use Version to probe
// reachability.
func Connect(cfg Config) (*HTTPClient, error) {
	baseURL, err := ParseAPIURL(cfg.APIURL)
	if err != nil {
		return nil, err
	}
	if _, _, err := SplitTokenID(cfg.TokenID); err != nil {
		return nil, err
	}
	if cfg.TokenSecret == "" {
		return nil, fmt.Errorf("token secret is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &HTTPClient{
		baseURL:    baseURL,
		authHeader: fmt.Sprintf("PVEAPIToken=%s=%s", cfg.TokenID, cfg.TokenSecret),
		hc: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}, nil
}

// apiResponse is the envelope every /api2/json response uses.
type apiResponse struct {
	Data json.RawMessage `json:"data"`
}

// do issues a request and decodes the "data" envelope into out.
// A nil out discards the response body after the status check.
// GET and DELETE encode params into the query string; the PVE API
// server only reads body parameters for POST and PUT.
func (c *HTTPClient) do(ctx context.Context, method, path string, params url.Values, out interface{}) error {
	endpoint := c.baseURL + "/api2/json" + path

	var body io.Reader
	if params != nil {
		if method == http.MethodGet || method == http.MethodDelete {
			endpoint += "?" + params.Encode()
		} else {
			body = strings.NewReader(params.Encode())
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", c.authHeader)
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Message:    strings.TrimSpace(string(raw)),
		}
	}

	if out == nil {
		return nil
	}

	var envelope apiResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	if envelope.Data == nil || string(envelope.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("decoding response data: %w", err)
	}
	return nil
}

// get is a convenience wrapper for GET requests.
func (c *HTTPClient) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, params, out)
}

// post is a convenience wrapper for POST requests returning a UPID.
func (c *HTTPClient) postTask(ctx context.Context, path string, params url.Values) (string, error) {
	var upid string
	if err := c.do(ctx, http.MethodPost, path, params, &upid); err != nil {
		return "", err
	}
	return upid, nil
}

// Version implements Client.
func (c *HTTPClient) Version(ctx context.Context) (*VersionInfo, error) {
	var v VersionInfo
	if err := c.get(ctx, "/version", nil, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// ListNodes implements NodeManager.
func (c *HTTPClient) ListNodes(ctx context.Context) ([]Node, error) {
	var nodes []Node
	if err := c.get(ctx, "/nodes", nil, &nodes); err != nil {
		return nil, err
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Node < nodes[j].Node })
	return nodes, nil
}

// NodeStatus implements NodeManager.
func (c *HTTPClient) NodeStatus(ctx context.Context, node string) (*NodeStatus, error) {
	var status NodeStatus
	path := fmt.Sprintf("/nodes/%s/status", url.PathEscape(node))
	if err := c.get(ctx, path, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// ListBridges implements NodeManager. The API filters by interface
// type server-side; any_bridge covers Linux and OVS bridges.
func (c *HTTPClient) ListBridges(ctx context.Context, node string) ([]NetworkBridge, error) {
	params := url.Values{}
	params.Set("type", "any_bridge")

	var bridges []NetworkBridge
	path := fmt.Sprintf("/nodes/%s/network", url.PathEscape(node))
	if err := c.get(ctx, path, params, &bridges); err != nil {
		return nil, err
	}
	sort.Slice(bridges, func(i, j int) bool { return bridges[i].Iface < bridges[j].Iface })
	return bridges, nil
}

// clusterResource is one entry of GET /cluster/resources.
type clusterResource struct {
	Type     string  `json:"type"`
	VMID     int     `json:"vmid"`
	Name     string  `json:"name"`
	Node     string  `json:"node"`
	Status   string  `json:"status"`
	CPU      float64 `json:"cpu"`
	MaxCPU   int     `json:"maxcpu"`
	Mem      int64   `json:"mem"`
	MaxMem   int64   `json:"maxmem"`
	MaxDisk  int64   `json:"maxdisk"`
	Uptime   int64   `json:"uptime"`
	Template int     `json:"template"`
	Tags     string  `json:"tags"`
}

// listGuests fetches cluster-wide guest resources of one type
// ("qemu" or "lxc") applying the filter.
func (c *HTTPClient) listGuests(ctx context.Context, guestType string, filter ListFilter) ([]clusterResource, error) {
	params := url.Values{}
	params.Set("type", "vm")

	var resources []clusterResource
	if err := c.get(ctx, "/cluster/resources", params, &resources); err != nil {
		return nil, err
	}

	search := strings.ToLower(filter.Search)
	matched := resources[:0]
	for _, r := range resources {
		if r.Type != guestType {
			continue
		}
		if filter.Node != "" && r.Node != filter.Node {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(r.Name), search) {
			continue
		}
		matched = append(matched, r)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].VMID < matched[j].VMID })
	return matched, nil
}

// ListVMs implements GuestManager.
func (c *HTTPClient) ListVMs(ctx context.Context, filter ListFilter) ([]VM, error) {
	resources, err := c.listGuests(ctx, "qemu", filter)
	if err != nil {
		return nil, err
	}
	vms := make([]VM, 0, len(resources))
	for _, r := range resources {
		vms = append(vms, VM{
			VMID:     r.VMID,
			Name:     r.Name,
			Node:     r.Node,
			Status:   r.Status,
			CPU:      r.CPU,
			CPUs:     r.MaxCPU,
			Mem:      r.Mem,
			MaxMem:   r.MaxMem,
			MaxDisk:  r.MaxDisk,
			Uptime:   r.Uptime,
			Template: r.Template,
			Tags:     r.Tags,
		})
	}
	return vms, nil
}

// ListContainers implements GuestManager.
func (c *HTTPClient) ListContainers(ctx context.Context, filter ListFilter) ([]Container, error) {
	resources, err := c.listGuests(ctx, "lxc", filter)
	if err != nil {
		return nil, err
	}
	cts := make([]Container, 0, len(resources))
	for _, r := range resources {
		cts = append(cts, Container{
			VMID:     r.VMID,
			Name:     r.Name,
			Node:     r.Node,
			Status:   r.Status,
			CPU:      r.CPU,
			CPUs:     r.MaxCPU,
			Mem:      r.Mem,
			MaxMem:   r.MaxMem,
			MaxDisk:  r.MaxDisk,
			Uptime:   r.Uptime,
			Template: r.Template,
			Tags:     r.Tags,
		})
	}
	return cts, nil
}

// VMConfig implements GuestManager.
func (c *HTTPClient) VMConfig(ctx context.Context, node string, vmid int) (map[string]interface{}, error) {
	var config map[string]interface{}
	path := fmt.Sprintf("/nodes/%s/qemu/%d/config", url.PathEscape(node), vmid)
	if err := c.get(ctx, path, nil, &config); err != nil {
		return nil, err
	}
	return config, nil
}

// CreateVM implements GuestManager.
func (c *HTTPClient) CreateVM(ctx context.Context, node string, vmid int, opts CreateVMOptions) (string, error) {
	cores := opts.Cores
	if cores <= 0 {
		cores = 2
	}
	memory := opts.MemoryMB
	if memory <= 0 {
		memory = 2048
	}
	diskGB := opts.DiskGB
	if diskGB <= 0 {
		diskGB = 20
	}
	scsihw := opts.SCSIHw
	if scsihw == "" {
		scsihw = "virtio-scsi-pci"
	}
	ostype := opts.OSType
	if ostype == "" {
		ostype = "l26"
	}

	params := url.Values{}
	params.Set("vmid", strconv.Itoa(vmid))
	params.Set("name", opts.Name)
	params.Set("cores", strconv.Itoa(cores))
	params.Set("memory", strconv.Itoa(memory))
	params.Set("scsihw", scsihw)
	params.Set("ostype", ostype)
	if opts.Agent {
		params.Set("agent", "1")
	}
	if opts.Storage != "" {
		params.Set("scsi0", fmt.Sprintf("%s:%d", opts.Storage, diskGB))
	}
	if opts.Bridge != "" {
		params.Set("net0", fmt.Sprintf("virtio,bridge=%s", opts.Bridge))
	}
	if opts.ISO != "" {
		params.Set("ide2", fmt.Sprintf("%s,media=cdrom", opts.ISO))
	}

	path := fmt.Sprintf("/nodes/%s/qemu", url.PathEscape(node))
	return c.postTask(ctx, path, params)
}

// CloneVM implements GuestManager.
func (c *HTTPClient) CloneVM(ctx context.Context, node string, vmid, newVMID int, opts CloneVMOptions) (string, error) {
	params := url.Values{}
	params.Set("newid", strconv.Itoa(newVMID))
	if opts.Name != "" {
		params.Set("name", opts.Name)
	}
	if opts.TargetNode != "" {
		params.Set("target", opts.TargetNode)
	}
	if opts.Full {
		params.Set("full", "1")
	}
	if opts.Storage != "" {
		params.Set("storage", opts.Storage)
	}

	path := fmt.Sprintf("/nodes/%s/qemu/%d/clone", url.PathEscape(node), vmid)
	return c.postTask(ctx, path, params)
}

// StartVM implements GuestManager.
func (c *HTTPClient) StartVM(ctx context.Context, node string, vmid int) (string, error) {
	path := fmt.Sprintf("/nodes/%s/qemu/%d/status/start", url.PathEscape(node), vmid)
	return c.postTask(ctx, path, nil)
}

// StopVM implements GuestManager.
func (c *HTTPClient) StopVM(ctx context.Context, node string, vmid int) (string, error) {
	path := fmt.Sprintf("/nodes/%s/qemu/%d/status/stop", url.PathEscape(node), vmid)
	return c.postTask(ctx, path, nil)
}

// ShutdownVM implements GuestManager.
func (c *HTTPClient) ShutdownVM(ctx context.Context, node string, vmid int, timeoutSec int) (string, error) {
	params := url.Values{}
	if timeoutSec > 0 {
		params.Set("timeout", strconv.Itoa(timeoutSec))
	}
	path := fmt.Sprintf("/nodes/%s/qemu/%d/status/shutdown", url.PathEscape(node), vmid)
	return c.postTask(ctx, path, params)
}

// RebootVM implements GuestManager.
func (c *HTTPClient) RebootVM(ctx context.Context, node string, vmid int) (string, error) {
	path := fmt.Sprintf("/nodes/%s/qemu/%d/status/reboot", url.PathEscape(node), vmid)
	return c.postTask(ctx, path, nil)
}

// MigrateVM implements GuestManager.
func (c *HTTPClient) MigrateVM(ctx context.Context, node string, vmid int, targetNode string, online bool) (string, error) {
	params := url.Values{}
	params.Set("target", targetNode)
	if online {
		params.Set("online", "1")
	}
	path := fmt.Sprintf("/nodes/%s/qemu/%d/migrate", url.PathEscape(node), vmid)
	return c.postTask(ctx, path, params)
}

// DeleteVM implements GuestManager.
func (c *HTTPClient) DeleteVM(ctx context.Context, node string, vmid int, purge bool) (string, error) {
	params := url.Values{}
	if purge {
		params.Set("purge", "1")
		params.Set("destroy-unreferenced-disks", "1")
	}
	var upid string
	path := fmt.Sprintf("/nodes/%s/qemu/%d", url.PathEscape(node), vmid)
	if err := c.do(ctx, http.MethodDelete, path, params, &upid); err != nil {
		return "", err
	}
	return upid, nil
}

// ResizeVMDisk implements GuestManager.
func (c *HTTPClient) ResizeVMDisk(ctx context.Context, node string, vmid int, disk string, sizeGB int) error {
	params := url.Values{}
	params.Set("disk", disk)
	params.Set("size", fmt.Sprintf("+%dG", sizeGB))
	path := fmt.Sprintf("/nodes/%s/qemu/%d/resize", url.PathEscape(node), vmid)
	return c.do(ctx, http.MethodPut, path, params, nil)
}

// ConfigureVM implements GuestManager.
func (c *HTTPClient) ConfigureVM(ctx context.Context, node string, vmid int, cfg map[string]string) error {
	params := url.Values{}
	for k, v := range cfg {
		params.Set(k, v)
	}
	path := fmt.Sprintf("/nodes/%s/qemu/%d/config", url.PathEscape(node), vmid)
	return c.do(ctx, http.MethodPut, path, params, nil)
}

// ContainerConfig implements GuestManager.
func (c *HTTPClient) ContainerConfig(ctx context.Context, node string, vmid int) (map[string]interface{}, error) {
	var config map[string]interface{}
	path := fmt.Sprintf("/nodes/%s/lxc/%d/config", url.PathEscape(node), vmid)
	if err := c.get(ctx, path, nil, &config); err != nil {
		return nil, err
	}
	return config, nil
}

// CreateContainer implements GuestManager.
func (c *HTTPClient) CreateContainer(ctx context.Context, node string, vmid int, opts CreateContainerOptions) (string, error) {
	cores := opts.Cores
	if cores <= 0 {
		cores = 2
	}
	memory := opts.MemoryMB
	if memory <= 0 {
		memory = 1024
	}
	rootfsGB := opts.RootFSGB
	if rootfsGB <= 0 {
		rootfsGB = 8
	}

	params := url.Values{}
	params.Set("vmid", strconv.Itoa(vmid))
	params.Set("hostname", opts.Hostname)
	params.Set("ostemplate", opts.OSTemplate)
	params.Set("cores", strconv.Itoa(cores))
	params.Set("memory", strconv.Itoa(memory))
	if opts.Storage != "" {
		params.Set("rootfs", fmt.Sprintf("%s:%d", opts.Storage, rootfsGB))
	}
	if opts.Bridge != "" {
		net0 := fmt.Sprintf("name=eth0,bridge=%s", opts.Bridge)
		if opts.NetIP != "" {
			net0 += ",ip=" + opts.NetIP
		} else {
			net0 += ",ip=dhcp"
		}
		params.Set("net0", net0)
	}
	if opts.Password != "" {
		params.Set("password", opts.Password)
	}

	path := fmt.Sprintf("/nodes/%s/lxc", url.PathEscape(node))
	return c.postTask(ctx, path, params)
}

// StartContainer implements GuestManager.
func (c *HTTPClient) StartContainer(ctx context.Context, node string, vmid int) (string, error) {
	path := fmt.Sprintf("/nodes/%s/lxc/%d/status/start", url.PathEscape(node), vmid)
	return c.postTask(ctx, path, nil)
}

// StopContainer implements GuestManager.
func (c *HTTPClient) StopContainer(ctx context.Context, node string, vmid int) (string, error) {
	path := fmt.Sprintf("/nodes/%s/lxc/%d/status/stop", url.PathEscape(node), vmid)
	return c.postTask(ctx, path, nil)
}

// ShutdownContainer implements GuestManager.
func (c *HTTPClient) ShutdownContainer(ctx context.Context, node string, vmid int, timeoutSec int) (string, error) {
	params := url.Values{}
	if timeoutSec > 0 {
		params.Set("timeout", strconv.Itoa(timeoutSec))
	}
	path := fmt.Sprintf("/nodes/%s/lxc/%d/status/shutdown", url.PathEscape(node), vmid)
	return c.postTask(ctx, path, params)
}

// RebootContainer implements GuestManager.
func (c *HTTPClient) RebootContainer(ctx context.Context, node string, vmid int) (string, error) {
	path := fmt.Sprintf("/nodes/%s/lxc/%d/status/reboot", url.PathEscape(node), vmid)
	return c.postTask(ctx, path, nil)
}

// MigrateContainer implements GuestManager.
func (c *HTTPClient) MigrateContainer(ctx context.Context, node string, vmid int, targetNode string, restart bool) (string, error) {
	params := url.Values{}
	params.Set("target", targetNode)
	if restart {
		params.Set("restart", "1")
	}
	path := fmt.Sprintf("/nodes/%s/lxc/%d/migrate", url.PathEscape(node), vmid)
	return c.postTask(ctx, path, params)
}

// DeleteContainer implements GuestManager.
func (c *HTTPClient) DeleteContainer(ctx context.Context, node string, vmid int, purge bool) (string, error) {
	params := url.Values{}
	if purge {
		params.Set("purge", "1")
	}
	var upid string
	path := fmt.Sprintf("/nodes/%s/lxc/%d", url.PathEscape(node), vmid)
	if err := c.do(ctx, http.MethodDelete, path, params, &upid); err != nil {
		return "", err
	}
	return upid, nil
}

// ConfigureContainer implements GuestManager.
func (c *HTTPClient) ConfigureContainer(ctx context.Context, node string, vmid int, cfg map[string]string) error {
	params := url.Values{}
	for k, v := range cfg {
		params.Set(k, v)
	}
	path := fmt.Sprintf("/nodes/%s/lxc/%d/config", url.PathEscape(node), vmid)
	return c.do(ctx, http.MethodPut, path, params, nil)
}

// ListStorage implements StorageManager.
func (c *HTTPClient) ListStorage(ctx context.Context) ([]Storage, error) {
	var storages []Storage
	if err := c.get(ctx, "/storage", nil, &storages); err != nil {
		return nil, err
	}
	sort.Slice(storages, func(i, j int) bool { return storages[i].Storage < storages[j].Storage })
	return storages, nil
}

// StorageStatus implements StorageManager.
func (c *HTTPClient) StorageStatus(ctx context.Context, node, storage string) (*Storage, error) {
	var status Storage
	path := fmt.Sprintf("/nodes/%s/storage/%s/status", url.PathEscape(node), url.PathEscape(storage))
	if err := c.get(ctx, path, nil, &status); err != nil {
		return nil, err
	}
	status.Storage = storage
	status.Node = node
	return &status, nil
}

// StorageContent implements StorageManager.
func (c *HTTPClient) StorageContent(ctx context.Context, node, storage string) ([]StorageContent, error) {
	var content []StorageContent
	path := fmt.Sprintf("/nodes/%s/storage/%s/content", url.PathEscape(node), url.PathEscape(storage))
	if err := c.get(ctx, path, nil, &content); err != nil {
		return nil, err
	}
	return content, nil
}

// ListTasks implements TaskManager. With an empty node it queries the
// cluster-wide task list.
func (c *HTTPClient) ListTasks(ctx context.Context, node string, limit int) ([]Task, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	path := "/cluster/tasks"
	if node != "" {
		path = fmt.Sprintf("/nodes/%s/tasks", url.PathEscape(node))
	}

	var tasks []Task
	if err := c.get(ctx, path, params, &tasks); err != nil {
		return nil, err
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].StartTime > tasks[j].StartTime })
	if limit > 0 && len(tasks) > limit {
		tasks = tasks[:limit]
	}
	return tasks, nil
}

// TaskStatus implements TaskManager. An empty node is derived from the
// UPID, which embeds the owning node name.
func (c *HTTPClient) TaskStatus(ctx context.Context, node, upid string) (*Task, error) {
	if node == "" {
		derived, err := NodeFromUPID(upid)
		if err != nil {
			return nil, err
		}
		node = derived
	}

	var task Task
	path := fmt.Sprintf("/nodes/%s/tasks/%s/status", url.PathEscape(node), url.PathEscape(upid))
	if err := c.get(ctx, path, nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// DefaultPollInterval is how often WaitForTask polls when the caller
// does not specify an interval.
const DefaultPollInterval = 2 * time.Second

// WaitForTask implements TaskManager.
func (c *HTTPClient) WaitForTask(ctx context.Context, node, upid string, interval time.Duration) (*Task, error) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if node == "" {
		derived, err := NodeFromUPID(upid)
		if err != nil {
			return nil, err
		}
		node = derived
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		task, err := c.TaskStatus(ctx, node, upid)
		if err != nil {
			return nil, err
		}
		if task.Finished() {
			return task, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// NodeFromUPID extracts the node name from a Proxmox task UPID, which
// has the form "UPID:node:pid:pstart:starttime:type:id:user:".
func NodeFromUPID(upid string) (string, error) {
	parts := strings.Split(upid, ":")
	if len(parts) < 3 || parts[0] != "UPID" || parts[1] == "" {
		return "", fmt.Errorf("malformed UPID %q", upid)
	}
	return parts[1], nil
}
