package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adamancini/devsim/internal/config"
	"github.com/adamancini/devsim/internal/templates"
)

func newInitCmd() *cobra.Command {
	var templateName string
	var outputPath string
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a starter config or update command",
		Long: `Create a simulator config or an update command from a built-in template.

Available templates:
  config   - Simulator config with 20 autostart devices
  fleet    - Two device groups with random attributes
  command  - Update command with one firmware artifact

Examples:
  devsim init                          # Interactive mode
  devsim init --template=config        # Writes ./devsim.yaml
  devsim init --template=command       # Writes ./update.yaml
  devsim init -t fleet --path ~/.devsim/devsim.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr(), templateName, outputPath, force)
		},
	}

	cmd.Flags().StringVarP(&templateName, "template", "t", "", "Template name")
	cmd.Flags().StringVar(&outputPath, "path", "", "Output path (defaults to devsim.yaml or update.yaml)")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	// Register completion for template flag
	_ = cmd.RegisterFlagCompletionFunc("template", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		var completions []string
		for _, name := range templates.List() {
			completions = append(completions, fmt.Sprintf("%s\t%s", name, templates.GetDescription(name)))
		}
		return completions, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// runInit executes the init workflow.
func runInit(stdin io.Reader, stdout, stderr io.Writer, templateName, outputPath string, force bool) error {
	reader := bufio.NewReader(stdin)

	if templateName == "" {
		selected, err := selectTemplateInteractive(reader, stdout)
		if err != nil {
			return err
		}
		templateName = selected
	}

	tmpl, err := templates.Get(templateName)
	if err != nil {
		return fmt.Errorf("failed to load template: %w", err)
	}

	if outputPath == "" {
		outputPath = tmpl.DefaultFile()
	}
	outputPath = expandHomePath(outputPath)

	if _, err := os.Stat(outputPath); err == nil && !force {
		_, _ = fmt.Fprintf(stderr, "%s already exists\n", outputPath)
		_, _ = fmt.Fprintf(stdout, "Overwrite? [y/N]: ")
		answer, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("failed to read input: %w", err)
		}
		answer = strings.TrimSpace(strings.ToLower(answer))
		if answer != "y" && answer != "yes" {
			_, _ = fmt.Fprintln(stdout, "Aborted.")
			return nil
		}
	}

	if err := validateTemplate(tmpl); err != nil {
		return fmt.Errorf("invalid template: %w", err)
	}

	parentDir := filepath.Dir(outputPath)
	if err := os.MkdirAll(parentDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", parentDir, err)
	}

	if err := os.WriteFile(outputPath, tmpl.Content, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outputPath, err)
	}

	_, _ = fmt.Fprintf(stdout, "Created %s\n", outputPath)
	if quiet {
		return nil
	}

	_, _ = fmt.Fprintln(stdout, "\nNext steps:")
	if tmpl.Kind == templates.KindCommand {
		_, _ = fmt.Fprintln(stdout, "  1. Point the artifact urls, size and sha1 at a file your origin serves")
		_, _ = fmt.Fprintf(stdout, "  2. Run 'devsim simulate -f %s --delay 0'\n", outputPath)
	} else {
		_, _ = fmt.Fprintln(stdout, "  1. Edit the config to size your fleet")
		_, _ = fmt.Fprintln(stdout, "  2. Run 'devsim devices' to list the simulated devices")
	}

	return nil
}

// selectTemplateInteractive shows an interactive menu for template selection.
func selectTemplateInteractive(reader *bufio.Reader, stdout io.Writer) (string, error) {
	templateList := templates.List()

	_, _ = fmt.Fprintln(stdout, "\nSelect a template:")
	for i, name := range templateList {
		_, _ = fmt.Fprintf(stdout, "  %d. %-8s - %s\n", i+1, name, templates.GetDescription(name))
	}
	_, _ = fmt.Fprintf(stdout, "\nSelect [1-%d]: ", len(templateList))

	answer, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read input: %w", err)
	}

	answer = strings.TrimSpace(answer)
	num, err := strconv.Atoi(answer)
	if err != nil || num < 1 || num > len(templateList) {
		return "", fmt.Errorf("invalid selection: %s", answer)
	}

	return templateList[num-1], nil
}

// validateTemplate checks that the template parses as what it claims to be.
func validateTemplate(tmpl *templates.Template) error {
	name := tmpl.DefaultFile()
	if tmpl.Kind == templates.KindCommand {
		_, err := config.ParseCommand(name, tmpl.Content, config.DefaultTenant)
		return err
	}
	_, err := config.Parse(name, tmpl.Content)
	return err
}

// expandHomePath expands ~ to the user's home directory.
func expandHomePath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
