package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	baseDate     string
	outputDir    string
	settingsPath string
	contentPath  string
	templatePath string
	debugMode    bool
)

var rootCmd = &cobra.Command{
	Use:   "nad-packages",
	Short: "Weekly publishing package generator for Notes After Dark",
	Long: `Generates the weekly publishing packages (titles, descriptions, tags, chapter
templates and thumbnail prompts) for the next scheduled episodes. Output is
deterministic for a given base date and configuration.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		processor := mustProcessor()

		base, err := processor.ResolveBaseDate(baseDate, time.Now())
		if err != nil {
			log.Fatalf("Invalid base date: %v", err)
		}

		results, err := processor.Run(base)
		if err != nil {
			log.Fatalf("Generation failed: %v", err)
		}

		out := cmd.OutOrStdout()
		for _, result := range results {
			fmt.Fprintln(out, filepath.ToSlash(result.Filename))
		}
	},
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show the next batch without writing any file",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		processor := mustProcessor()

		base, err := processor.ResolveBaseDate(baseDate, time.Now())
		if err != nil {
			log.Fatalf("Invalid base date: %v", err)
		}

		plan, err := processor.Plan(base)
		if err != nil {
			log.Fatalf("Planning failed: %v", err)
		}
		printPlan(cmd.OutOrStdout(), plan)
	},
}

var initCmd = &cobra.Command{
	Use:   "init [config-dir]",
	Short: "Write the default settings, content pools and template for editing",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dir := defaultConfigDir
		if len(args) > 0 {
			dir = args[0]
		}
		written, err := ensureConfigExists(dir)
		if err != nil {
			log.Fatalf("Init failed: %v", err)
		}
		for _, path := range written {
			fmt.Fprintln(cmd.OutOrStdout(), filepath.ToSlash(path))
		}
	},
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	seriesStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// printPlan writes a short human summary of every slot
func printPlan(w io.Writer, plan *BatchPlan) {
	for i, bundle := range plan.Bundles {
		ctx := bundle.Context
		fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%s %s", ctx.DateString(), ctx.WeekdayLabel))+" "+seriesStyle.Render(ctx.Series))
		fmt.Fprintf(w, "  %s %s\n", mutedStyle.Render("title:"), bundle.TitleFinal)
		fmt.Fprintf(w, "  %s %s\n", mutedStyle.Render("keyword:"), ctx.Keyword)
		fmt.Fprintf(w, "  %s %s\n", mutedStyle.Render("duration:"), ctx.DurationTarget)
		fmt.Fprintf(w, "  %s %d\n", mutedStyle.Render("tags:"), len(bundle.Tags))
		fmt.Fprintf(w, "  %s %s\n", mutedStyle.Render("file:"), plan.Documents[i].Filename)
	}
}

// mustProcessor builds the processor from the command line flags
func mustProcessor() *PackageProcessor {
	if debugMode {
		SetDebugMode(true)
	}

	overrides := &ConfigOverrides{}
	if settingsPath != "" {
		overrides.SettingsPath = &settingsPath
	}
	if contentPath != "" {
		overrides.ContentPath = &contentPath
	}
	if templatePath != "" {
		overrides.TemplatePath = &templatePath
	}
	if outputDir != "" {
		overrides.OutputDir = &outputDir
	}

	processor, err := NewPackageProcessor(overrides)
	if err != nil {
		log.Fatalf("Failed to create processor: %v", err)
	}
	return processor
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&baseDate, "base-date", "", "Base date YYYY-MM-DD (default: today in the configured time zone)")
	flags.StringVar(&outputDir, "output-dir", "", "Output directory for the markdown packages")
	flags.StringVar(&settingsPath, "settings", "", "Path to a custom settings file")
	flags.StringVar(&contentPath, "content", "", "Path to a custom content pools file")
	flags.StringVar(&templatePath, "template", "", "Path to a custom package template file")
	flags.BoolVar(&debugMode, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(initCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
