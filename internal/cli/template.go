package cli

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"duediligence/internal/checklist/models"
)

// TemplateCmd groups the template authoring commands.
func TemplateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Author and publish due diligence checklist templates",
	}
	cmd.PersistentFlags().String("server", "", "API base URL (default $DD_SERVER_URL or "+defaultServer+")")
	cmd.PersistentFlags().String("token", "", "bearer token (default $DD_TOKEN)")

	cmd.AddCommand(templateValidateCmd(), templatePublishCmd(), templateShowCmd())
	return cmd
}

func templateValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a template file without publishing it",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			tmpl, err := LoadTemplate(file)
			if err != nil {
				return err
			}
			printTemplate(cmd.OutOrStdout(), tmpl)
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s v%d is valid\n",
				color.New(color.FgGreen).Sprint("✓"), tmpl.ChecklistType, tmpl.VersionNumber)
			return nil
		},
	}
	cmd.Flags().StringP("file", "f", "", "template YAML file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func templatePublishCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish a template version from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			tmpl, err := LoadTemplate(file)
			if err != nil {
				return err
			}
			var published models.Template
			if err := apiClient(cmd).Do(cmd.Context(), http.MethodPost, "/due-diligence-checklists", tmpl, &published); err != nil {
				return fmt.Errorf("publish %s v%d: %w", tmpl.ChecklistType, tmpl.VersionNumber, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Published %s v%d at %s\n",
				color.New(color.FgGreen).Sprint("✓"), published.ChecklistType, published.VersionNumber,
				published.PublishedAt.Format("2006-01-02 15:04:05"))
			return nil
		},
	}
	cmd.Flags().StringP("file", "f", "", "template YAML file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func templateShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [checklist-type] [version]",
		Short: "Print a published template as YAML",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("version must be a number: %q", args[1])
			}
			var tmpl models.Template
			path := "/due-diligence-checklists/" + url.PathEscape(args[0]) + "/" + strconv.Itoa(version)
			if err := apiClient(cmd).Do(cmd.Context(), http.MethodGet, path, nil, &tmpl); err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(&tmpl)
		},
	}
	return cmd
}

// LoadTemplate reads, normalises and validates a template YAML file.
func LoadTemplate(path string) (*models.Template, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	return ParseTemplate(raw)
}

func ParseTemplate(raw []byte) (*models.Template, error) {
	var tmpl models.Template
	if err := yaml.Unmarshal(raw, &tmpl); err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}
	tmpl.Normalize()
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

func printTemplate(w io.Writer, tmpl *models.Template) {
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)
	for _, sec := range tmpl.Sections {
		fmt.Fprintf(w, "%s\n", bold.Sprint(sec.Title))
		for _, item := range sec.Items {
			fmt.Fprintf(w, "  - %s %s\n", item.Title, faint.Sprintf("(%s)", item.ID))
		}
	}
}

func apiClient(cmd *cobra.Command) *Client {
	server, _ := cmd.Flags().GetString("server")
	token, _ := cmd.Flags().GetString("token")
	return clientFromFlags(server, token)
}
