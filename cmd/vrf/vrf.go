package vrf

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
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
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:        "list",
		Usage:       "List VRFs",
		Description: "List VRFs, optionally filtered by name or route distinguisher",
		Flags: append(serverFlags(),
			&cli.StringFlag{Name: "name", Usage: "Filter by name"},
			&cli.StringFlag{Name: "rd", Usage: "Filter by route distinguisher"},
		),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			query := ""
			if name := cmd.GetString("name"); name != "" {
				query += "&name=" + name
			}
			if rd := cmd.GetString("rd"); rd != "" {
				query += "&rd=" + rd
			}
			path := "/api/vrfs"
			if query != "" {
				path += "?" + strings.TrimPrefix(query, "&")
			}

			resp, err := doRequest("GET", path, nil)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("server error: %s", resp.Status)
			}

			var vrfs []model.VRF
			if err := json.NewDecoder(resp.Body).Decode(&vrfs); err != nil {
				return err
			}
			printVRFs(vrfs)
			return nil
		},
	}
}

func addCommand() *cli.Command {
	return &cli.Command{
		Name:        "add",
		Usage:       "Add a VRF",
		Description: "Create a new VRF",
		Flags: append(serverFlags(),
			&cli.StringFlag{Name: "name", Usage: "VRF name", Required: true},
			&cli.StringFlag{Name: "rd", Usage: "Route distinguisher"},
			&cli.BoolFlag{Name: "enforce-unique", Usage: "Enforce unique prefixes and addresses within the VRF", DefaultValue: true},
			&cli.StringFlag{Name: "description", Usage: "Description"},
		),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			vrf := model.VRF{
				Name:          cmd.GetString("name"),
				RD:            cmd.GetString("rd"),
				EnforceUnique: cmd.GetBool("enforce-unique"),
				Description:   cmd.GetString("description"),
			}
			data, err := json.Marshal(vrf)
			if err != nil {
				return err
			}

			resp, err := doRequest("POST", "/api/vrfs", strings.NewReader(string(data)))
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusCreated {
				body, _ := io.ReadAll(resp.Body)
				return fmt.Errorf("server error: %s", string(body))
			}

			if err := json.NewDecoder(resp.Body).Decode(&vrf); err != nil {
				return err
			}
			fmt.Printf("VRF created: %s (ID: %s)\n", vrf.Name, vrf.ID)
			return nil
		},
	}
}

func getCommand() *cli.Command {
	return &cli.Command{
		Name:        "get",
		Usage:       "Get a VRF",
		Description: "Get a VRF by ID",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id", Required: true},
		},
		Flags: serverFlags(),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			resp, err := doRequest("GET", "/api/vrfs/"+cmd.GetStringArg("id"), nil)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusNotFound {
				return fmt.Errorf("VRF not found")
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("server error: %s", resp.Status)
			}

			var vrf model.VRF
			if err := json.NewDecoder(resp.Body).Decode(&vrf); err != nil {
				return err
			}
			printVRF(&vrf)
			return nil
		},
	}
}

func deleteCommand() *cli.Command {
	return &cli.Command{
		Name:        "delete",
		Usage:       "Delete a VRF",
		Description: "Delete a VRF by ID",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id", Required: true},
		},
		Flags: serverFlags(),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			resp, err := doRequest("DELETE", "/api/vrfs/"+cmd.GetStringArg("id"), nil)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusNotFound {
				return fmt.Errorf("VRF not found")
			}
			if resp.StatusCode != http.StatusNoContent {
				return fmt.Errorf("server error: %s", resp.Status)
			}
			fmt.Println("VRF deleted")
			return nil
		},
	}
}

func printVRFs(vrfs []model.VRF) {
	if len(vrfs) == 0 {
		fmt.Println("No VRFs found")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tRD\tUNIQUE")
	for _, v := range vrfs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%v\n", v.ID, v.Name, v.RD, v.EnforceUnique)
	}
	w.Flush()
}

func printVRF(v *model.VRF) {
	fmt.Printf("ID:             %s\n", v.ID)
	fmt.Printf("Name:           %s\n", v.Name)
	fmt.Printf("RD:             %s\n", v.RD)
	fmt.Printf("Enforce unique: %v\n", v.EnforceUnique)
	fmt.Printf("Description:    %s\n", v.Description)
}
