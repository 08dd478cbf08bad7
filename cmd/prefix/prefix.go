package prefix

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/paularlott/cli"

	"github.com/martinsuchenak/ipamd/internal/model"
)

var (
	serverURL string
	apiToken  string
)

func serverFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:         "server",
			Aliases:      []string{"s"},
			Usage:        "Server URL",
			DefaultValue: "http://localhost:8080",
			EnvVars:      []string{"IPAMD_SERVER_URL"},
			AssignTo:     &serverURL,
		},
		&cli.StringFlag{
			Name:     "token",
			Usage:    "API bearer token",
			EnvVars:  []string{"IPAMD_API_TOKEN"},
			AssignTo: &apiToken,
		},
	}
}

func doRequest(method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequest(method, serverURL+path, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+apiToken)
	}

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to server: %w", err)
	}
	return resp, nil
}

func Commands() []*cli.Command {
	return []*cli.Command{
		listCommand(),
		addCommand(),
		getCommand(),
		deleteCommand(),
		availableCommand(),
		allocateCommand(),
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:        "list",
		Usage:       "List prefixes",
		Description: "List prefixes with optional containment and attribute filters",
		Flags: append(serverFlags(),
			&cli.StringFlag{Name: "within", Usage: "Only prefixes strictly inside this network"},
			&cli.StringFlag{Name: "within-include", Usage: "Prefixes inside this network, the network itself included"},
			&cli.StringFlag{Name: "contains", Usage: "Only prefixes containing this network or address"},
			&cli.StringFlag{Name: "vrf", Usage: "Filter by VRF route distinguisher"},
			&cli.StringFlag{Name: "status", Usage: "Filter by status"},
			&cli.StringFlag{Name: "family", Usage: "Filter by address family (4 or 6)"},
			&cli.StringFlag{Name: "mask-length", Usage: "Filter by exact mask length"},
			&cli.StringFlag{Name: "query", Aliases: []string{"q"}, Usage: "Free-text search"},
		),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			q := url.Values{}
			for flag, param := range map[string]string{
				"within":         "within",
				"within-include": "within_include",
				"contains":       "contains",
				"vrf":            "vrf",
				"status":         "status",
				"family":         "family",
				"mask-length":    "mask_length",
				"query":          "q",
			} {
				if v := cmd.GetString(flag); v != "" {
					q.Set(param, v)
				}
			}

			path := "/api/prefixes"
			if len(q) > 0 {
				path += "?" + q.Encode()
			}

			resp, err := doRequest("GET", path, nil)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				body, _ := io.ReadAll(resp.Body)
				return fmt.Errorf("server error: %s", string(body))
			}

			var prefixes []model.Prefix
			if err := json.NewDecoder(resp.Body).Decode(&prefixes); err != nil {
				return err
			}
			printPrefixes(prefixes)
			return nil
		},
	}
}

func addCommand() *cli.Command {
	return &cli.Command{
		Name:        "add",
		Usage:       "Add a prefix",
		Description: "Create a new prefix",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "prefix", Required: true},
		},
		Flags: append(serverFlags(),
			&cli.StringFlag{Name: "vrf-id", Usage: "VRF ID"},
			&cli.StringFlag{Name: "site-id", Usage: "Site ID"},
			&cli.StringFlag{Name: "role-id", Usage: "Role ID"},
			&cli.StringFlag{Name: "status", Usage: "Status (container, active, reserved, deprecated)"},
			&cli.BoolFlag{Name: "pool", Usage: "Mark the prefix as a pool"},
			&cli.StringFlag{Name: "description", Usage: "Description"},
		),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			prefix := model.Prefix{
				Prefix:      cmd.GetStringArg("prefix"),
				VRFID:       cmd.GetString("vrf-id"),
				SiteID:      cmd.GetString("site-id"),
				RoleID:      cmd.GetString("role-id"),
				Status:      cmd.GetString("status"),
				IsPool:      cmd.GetBool("pool"),
				Description: cmd.GetString("description"),
			}
			data, err := json.Marshal(prefix)
			if err != nil {
				return err
			}

			resp, err := doRequest("POST", "/api/prefixes", strings.NewReader(string(data)))
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusCreated {
				body, _ := io.ReadAll(resp.Body)
				return fmt.Errorf("server error: %s", string(body))
			}

			if err := json.NewDecoder(resp.Body).Decode(&prefix); err != nil {
				return err
			}
			fmt.Printf("Prefix created: %s (ID: %s)\n", prefix.Prefix, prefix.ID)
			return nil
		},
	}
}

func getCommand() *cli.Command {
	return &cli.Command{
		Name:        "get",
		Usage:       "Get a prefix",
		Description: "Get a prefix by ID, including its utilization",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id", Required: true},
		},
		Flags: serverFlags(),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			id := cmd.GetStringArg("id")

			resp, err := doRequest("GET", "/api/prefixes/"+id, nil)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusNotFound {
				return fmt.Errorf("prefix not found")
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("server error: %s", resp.Status)
			}

			var prefix model.Prefix
			if err := json.NewDecoder(resp.Body).Decode(&prefix); err != nil {
				return err
			}
			printPrefix(&prefix)

			if util, err := fetchUtilization(id); err == nil {
				fmt.Printf("Utilization: %.1f%%\n", util*100)
			}
			return nil
		},
	}
}

func deleteCommand() *cli.Command {
	return &cli.Command{
		Name:        "delete",
		Usage:       "Delete a prefix",
		Description: "Delete a prefix by ID",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id", Required: true},
		},
		Flags: serverFlags(),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			resp, err := doRequest("DELETE", "/api/prefixes/"+cmd.GetStringArg("id"), nil)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusNotFound {
				return fmt.Errorf("prefix not found")
			}
			if resp.StatusCode != http.StatusNoContent {
				return fmt.Errorf("server error: %s", resp.Status)
			}
			fmt.Println("Prefix deleted")
			return nil
		},
	}
}

func availableCommand() *cli.Command {
	return &cli.Command{
		Name:        "available",
		Usage:       "Show free space inside a prefix",
		Description: "List the unused networks inside a prefix",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id", Required: true},
		},
		Flags: serverFlags(),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			id := cmd.GetStringArg("id")

			resp, err := doRequest("GET", "/api/prefixes/"+id+"/available-prefixes", nil)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusNotFound {
				return fmt.Errorf("prefix not found")
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("server error: %s", resp.Status)
			}

			var result struct {
				AvailablePrefixes []string `json:"available_prefixes"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
				return err
			}

			if len(result.AvailablePrefixes) == 0 {
				fmt.Println("No free space")
				return nil
			}
			for _, p := range result.AvailablePrefixes {
				fmt.Println(p)
			}
			return nil
		},
	}
}

func allocateCommand() *cli.Command {
	return &cli.Command{
		Name:        "allocate",
		Usage:       "Allocate a child prefix",
		Description: "Carve the first free child prefix of the requested length out of a parent prefix",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id", Required: true},
		},
		Flags: append(serverFlags(),
			&cli.IntFlag{Name: "prefix-length", Usage: "Mask length of the new prefix", Required: true},
			&cli.StringFlag{Name: "status", Usage: "Status for the new prefix"},
			&cli.BoolFlag{Name: "pool", Usage: "Mark the new prefix as a pool"},
			&cli.StringFlag{Name: "description", Usage: "Description"},
		),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			body := map[string]interface{}{
				"prefix_length": cmd.GetInt("prefix-length"),
			}
			if status := cmd.GetString("status"); status != "" {
				body["status"] = status
			}
			if cmd.GetBool("pool") {
				body["is_pool"] = true
			}
			if desc := cmd.GetString("description"); desc != "" {
				body["description"] = desc
			}
			data, err := json.Marshal(body)
			if err != nil {
				return err
			}

			id := cmd.GetStringArg("id")
			resp, err := doRequest("POST", "/api/prefixes/"+id+"/available-prefixes", strings.NewReader(string(data)))
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusCreated {
				respBody, _ := io.ReadAll(resp.Body)
				return fmt.Errorf("server error: %s", string(respBody))
			}

			var prefix model.Prefix
			if err := json.NewDecoder(resp.Body).Decode(&prefix); err != nil {
				return err
			}
			fmt.Printf("Prefix allocated: %s (ID: %s)\n", prefix.Prefix, prefix.ID)
			return nil
		},
	}
}

func fetchUtilization(id string) (float64, error) {
	resp, err := doRequest("GET", "/api/prefixes/"+id+"/utilization", nil)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("server error: %s", resp.Status)
	}

	var result struct {
		Utilization float64 `json:"utilization"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, err
	}
	return result.Utilization, nil
}

func printPrefixes(prefixes []model.Prefix) {
	if len(prefixes) == 0 {
		fmt.Println("No prefixes found")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPREFIX\tSTATUS\tVRF\tPOOL")
	for _, p := range prefixes {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%v\n", p.ID, p.Prefix, p.Status, p.VRFID, p.IsPool)
	}
	w.Flush()
}

func printPrefix(p *model.Prefix) {
	fmt.Printf("ID:          %s\n", p.ID)
	fmt.Printf("Prefix:      %s\n", p.Prefix)
	fmt.Printf("Family:      IPv%d\n", p.Family)
	fmt.Printf("Status:      %s\n", p.Status)
	fmt.Printf("VRF:         %s\n", p.VRFID)
	fmt.Printf("Site:        %s\n", p.SiteID)
	fmt.Printf("VLAN:        %s\n", p.VLANID)
	fmt.Printf("Role:        %s\n", p.RoleID)
	fmt.Printf("Pool:        %v\n", p.IsPool)
	fmt.Printf("Description: %s\n", p.Description)
}
