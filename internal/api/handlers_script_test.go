package api

import (
	"net/http"
	"testing"

	"github.com/martinsuchenak/ipamd/internal/filter"
	"github.com/martinsuchenak/ipamd/internal/model"
)

func TestHandler_ListScripts(t *testing.T) {
	server, _ := setupTestServer(t)

	var scripts []scriptInfo
	resp := doJSON(t, "GET", server.URL+"/api/scripts", nil, &scripts)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	if len(scripts) != 2 {
		t.Fatalf("Expected 2 built-in scripts, got %d", len(scripts))
	}
	// List is sorted by name
	if scripts[0].Name != "allocate_prefix" || scripts[1].Name != "reserve_ip" {
		t.Errorf("Unexpected script names: %s, %s", scripts[0].Name, scripts[1].Name)
	}
	if len(scripts[1].Fields) == 0 {
		t.Error("Expected field specs for reserve_ip")
	}
}

func TestHandler_GetScript_NotFound(t *testing.T) {
	server, _ := setupTestServer(t)

	resp := doJSON(t, "GET", server.URL+"/api/scripts/no-such-script", nil, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.StatusCode)
	}
}

func TestHandler_RunScript_ValidationErrors(t *testing.T) {
	server, _ := setupTestServer(t)

	var result struct {
		Errors map[string][]string `json:"errors"`
	}
	resp := doJSON(t, "POST", server.URL+"/api/scripts/reserve_ip/run", map[string]interface{}{}, &result)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", resp.StatusCode)
	}
	msgs, ok := result.Errors["prefix"]
	if !ok || len(msgs) == 0 {
		t.Fatalf("Expected an error for the prefix field, got %v", result.Errors)
	}
	if msgs[0] != "This field is required." {
		t.Errorf("Unexpected error message: %q", msgs[0])
	}
}

func TestHandler_RunScript_ReserveIP(t *testing.T) {
	server, store := setupTestServer(t)

	var prefix model.Prefix
	doJSON(t, "POST", server.URL+"/api/prefixes", map[string]interface{}{"prefix": "10.5.0.0/24"}, &prefix)

	var result struct {
		Status string   `json:"status"`
		Log    []string `json:"log"`
	}
	resp := doJSON(t, "POST", server.URL+"/api/scripts/reserve_ip/run", map[string]interface{}{
		"prefix":   prefix.ID,
		"dns_name": "gw.example.com",
	}, &result)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	if result.Status != "completed" {
		t.Fatalf("Expected status completed, got %q", result.Status)
	}
	if len(result.Log) == 0 {
		t.Error("Expected log output")
	}

	addrs, err := store.ListIPAddresses(filter.IPAddressFilter{MaskLength: -1})
	if err != nil {
		t.Fatalf("Failed to list addresses: %v", err)
	}
	if len(addrs) != 1 {
		t.Fatalf("Expected 1 reserved address, got %d", len(addrs))
	}
	if addrs[0].Address != "10.5.0.1/24" {
		t.Errorf("Expected 10.5.0.1/24, got %s", addrs[0].Address)
	}
	if addrs[0].Status != model.IPAddressStatusReserved {
		t.Errorf("Expected reserved status, got %s", addrs[0].Status)
	}
	if addrs[0].DNSName != "gw.example.com" {
		t.Errorf("Expected DNS name to be recorded, got %q", addrs[0].DNSName)
	}
}

func TestHandler_RunScript_AllocatePrefix(t *testing.T) {
	server, _ := setupTestServer(t)

	var parent model.Prefix
	doJSON(t, "POST", server.URL+"/api/prefixes", map[string]interface{}{"prefix": "10.6.0.0/16", "status": "container"}, &parent)

	var result struct {
		Status string `json:"status"`
	}
	resp := doJSON(t, "POST", server.URL+"/api/scripts/allocate_prefix/run", map[string]interface{}{
		"parent":        parent.ID,
		"prefix_length": 24,
		"is_pool":       true,
	}, &result)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	if result.Status != "completed" {
		t.Fatalf("Expected status completed, got %q", result.Status)
	}

	var prefixes []model.Prefix
	doJSON(t, "GET", server.URL+"/api/prefixes?within=10.6.0.0/16", nil, &prefixes)
	if len(prefixes) != 1 {
		t.Fatalf("Expected 1 allocated child, got %d", len(prefixes))
	}
	if prefixes[0].Prefix != "10.6.0.0/24" || !prefixes[0].IsPool {
		t.Errorf("Unexpected allocation: %+v", prefixes[0])
	}
}

func TestHandler_RunScript_UnknownObject(t *testing.T) {
	server, _ := setupTestServer(t)

	var result struct {
		Errors map[string][]string `json:"errors"`
	}
	resp := doJSON(t, "POST", server.URL+"/api/scripts/reserve_ip/run", map[string]interface{}{
		"prefix": "no-such-id",
	}, &result)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", resp.StatusCode)
	}
	if len(result.Errors["prefix"]) == 0 {
		t.Errorf("Expected an error for the prefix field, got %v", result.Errors)
	}
}
