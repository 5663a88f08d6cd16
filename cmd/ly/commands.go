package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/linkify/internal/config"
	"github.com/nikbrunner/linkify/internal/exporter"
	"github.com/nikbrunner/linkify/internal/importer"
	"github.com/nikbrunner/linkify/internal/model"
	"github.com/nikbrunner/linkify/internal/picker"
	"github.com/nikbrunner/linkify/internal/proxy"
	"github.com/nikbrunner/linkify/internal/search"
)

const requestTimeout = 15 * time.Second

// configCmd returns the `ly config` command.
func configCmd() *cobra.Command {
	var server, token string
	var debounceMS int

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the server settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := settingsPath()
			if err != nil {
				return err
			}
			settings, err := config.Load(path)
			if err != nil {
				return err
			}

			changed := false
			if cmd.Flags().Changed("server") {
				settings.Server = server
				changed = true
			}
			if cmd.Flags().Changed("token") {
				settings.Token = token
				changed = true
			}
			if cmd.Flags().Changed("debounce") {
				settings.DebounceMS = debounceMS
				changed = true
			}

			if changed {
				for _, p := range settings.Validate() {
					fmt.Fprintf(os.Stderr, "warning: %s\n", p)
				}
				if err := config.Save(path, settings); err != nil {
					return err
				}
				fmt.Printf("settings saved to %s\n", path)
				return nil
			}

			fmt.Printf("file:     %s\n", path)
			fmt.Printf("server:   %s\n", orUnset(settings.Server))
			fmt.Printf("token:    %s\n", maskToken(settings.Token))
			fmt.Printf("debounce: %s\n", settings.Debounce())
			fmt.Printf("log:      %s\n", settings.LogFile)
			for _, p := range settings.Validate() {
				fmt.Printf("problem:  %s\n", p)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&server, "server", "", "Linkify server URL, e.g. https://links.example.com")
	cmd.Flags().StringVar(&token, "token", "", "API token")
	cmd.Flags().IntVar(&debounceMS, "debounce", 0, "search debounce in milliseconds")
	return cmd
}

func orUnset(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

func maskToken(token string) string {
	switch {
	case token == "":
		return "(not set)"
	case len(token) <= 6:
		return strings.Repeat("*", len(token))
	default:
		return token[:3] + strings.Repeat("*", len(token)-6) + token[len(token)-3:]
	}
}

// openCmd returns the `ly open` command.
func openCmd() *cobra.Command {
	var newTab bool

	cmd := &cobra.Command{
		Use:   "open <query...>",
		Short: "Open the best matching link",
		Long:  "Search links, open a single match directly, or pick from several.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			s, err := openSession(0)
			if err != nil {
				return err
			}
			defer s.Close()
			if err := s.requireConfigured(); err != nil {
				return err
			}

			query := strings.Join(args, " ")
			links, err := matchLinks(s, query)
			if err != nil {
				return err
			}
			if len(links) == 0 {
				fmt.Printf("No links found for '%s'\n", query)
				return nil
			}

			var selected *model.Link
			if len(links) == 1 {
				selected = &links[0]
				fmt.Printf("Opening: %s\n", selected.Title())
			} else {
				p := picker.New(search.RankLinks(links, query), query)
				final, err := tea.NewProgram(p).Run()
				if err != nil {
					return fmt.Errorf("picker: %w", err)
				}
				selected = final.(picker.Picker).SelectedLink()
			}
			if selected == nil {
				return nil
			}

			return followLink(s.bridge, proxy.OpenURL, *selected, newTab, s.logger)
		},
	}
	cmd.Flags().BoolVarP(&newTab, "tab", "t", false, "open through the proxy's openTab action")
	return cmd
}

// linkFollower is the part of the proxy bridge followLink needs.
type linkFollower interface {
	OpenTab(ctx context.Context, url string) error
	ReadLink(ctx context.Context, id model.ID, href string) error
}

// followLink opens link and marks it read. It runs on its own deadline
// since the picker can stay open past the lookup's.
func followLink(b linkFollower, navigate func(string) error, link model.Link, newTab bool, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	var err error
	if newTab {
		err = b.OpenTab(ctx, link.Href)
	} else {
		err = navigate(link.Href)
	}
	if readErr := b.ReadLink(ctx, link.ID, link.Href); readErr != nil {
		logger.Warn("mark read failed", "url", link.Href, "error", readErr)
	}
	return err
}

func matchLinks(s *session, query string) ([]model.Link, error) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	return s.bridge.MatchLinks(ctx, query)
}

// saveCmd returns the `ly save` command.
func saveCmd() *cobra.Command {
	var name, desc, tags, flags string

	cmd := &cobra.Command{
		Use:   "save <url>",
		Short: "Save or update a link",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			link := model.Link{
				Href:        args[0],
				Name:        name,
				Description: desc,
				Tags:        model.NormalizeTags(strings.Split(tags, ",")),
			}
			if unknown := link.ApplyFlags(flags); len(unknown) > 0 {
				return fmt.Errorf("unknown flags: %s (use toread, shared, favourite)", strings.Join(unknown, ", "))
			}

			s, err := openSession(0)
			if err != nil {
				return err
			}
			defer s.Close()
			if err := s.requireConfigured(); err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()

			exists, err := s.bridge.LinkStatus(ctx, link.Href)
			if err != nil {
				return err
			}
			if err := s.bridge.StoreLink(ctx, link); err != nil {
				return err
			}
			if exists {
				fmt.Printf("Updated %s\n", link.Href)
			} else {
				fmt.Printf("Saved %s\n", link.Href)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "display name")
	cmd.Flags().StringVarP(&desc, "desc", "d", "", "description")
	cmd.Flags().StringVar(&tags, "tags", "", "comma-separated tags")
	cmd.Flags().StringVar(&flags, "flags", "", "comma-separated flags: toread, shared, favourite")
	return cmd
}

// rmCmd returns the `ly rm` command.
func rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <url>",
		Short: "Remove a saved link",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			s, err := openSession(0)
			if err != nil {
				return err
			}
			defer s.Close()
			if err := s.requireConfigured(); err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()

			links, err := s.bridge.GetLink(ctx, args[0])
			if err != nil {
				return err
			}
			if len(links) == 0 {
				return fmt.Errorf("%s is not saved", args[0])
			}

			var errs []error
			for _, l := range links {
				if err := s.bridge.RemoveLink(ctx, l.ID); err != nil {
					errs = append(errs, err)
					continue
				}
				fmt.Printf("Removed %s\n", l.Title())
			}
			return errors.Join(errs...)
		},
	}
}

// tagsCmd returns the `ly tags` command.
func tagsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tags [prefix]",
		Short: "List tag suggestions",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			s, err := openSession(0)
			if err != nil {
				return err
			}
			defer s.Close()
			if err := s.requireConfigured(); err != nil {
				return err
			}

			prefix := ""
			if len(args) == 1 {
				prefix = args[0]
			}
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()

			tags, err := s.bridge.SuggestTags(ctx, prefix)
			if err != nil {
				return err
			}
			for _, t := range tags {
				fmt.Println(t)
			}
			return nil
		},
	}
}

// importCmd returns the `ly import` command.
func importCmd() *cobra.Command {
	var concurrency int

	cmd := &cobra.Command{
		Use:   "import <file.html>",
		Short: "Import links from Netscape bookmark HTML",
		Long:  "Import links from a browser or Pinboard export. Folder names become tags.",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open file: %w", err)
			}
			defer file.Close()

			links, err := importer.ParseHTMLLinks(file)
			if err != nil {
				return fmt.Errorf("parse HTML: %w", err)
			}
			if len(links) == 0 {
				fmt.Println("No links found")
				return nil
			}

			s, err := openSession(0)
			if err != nil {
				return err
			}
			defer s.Close()
			if err := s.requireConfigured(); err != nil {
				return err
			}

			results := importer.Upload(context.Background(), s.bridge, links, concurrency, func(completed, total int) {
				fmt.Fprintf(os.Stderr, "\rImporting %d/%d", completed, total)
			})
			fmt.Fprintln(os.Stderr)

			stored, failed, skipped := importer.Summary(results)
			fmt.Printf("Imported %d links", stored)
			if failed+skipped > 0 {
				fmt.Printf(" (%d failed)", failed+skipped)
			}
			fmt.Println()
			for _, r := range results {
				if r.Status != importer.Stored {
					fmt.Fprintf(os.Stderr, "  %s: %s\n", r.Link.Href, r.Error)
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", 4, "parallel uploads")
	return cmd
}

// exportCmd returns the `ly export` command.
func exportCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "export [path]",
		Short: "Export links to Netscape bookmark HTML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			outputPath := ""
			if len(args) == 1 {
				outputPath = args[0]
			} else {
				var err error
				outputPath, err = exporter.DefaultExportPath()
				if err != nil {
					return fmt.Errorf("default export path: %w", err)
				}
			}

			s, err := openSession(limit)
			if err != nil {
				return err
			}
			defer s.Close()
			if err := s.requireConfigured(); err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()

			links, err := s.bridge.MatchLinks(ctx, "")
			if err != nil {
				return err
			}

			if err := os.WriteFile(outputPath, []byte(exporter.ExportHTML(links)), 0644); err != nil {
				return fmt.Errorf("write file: %w", err)
			}
			fmt.Printf("Exported %d links to %s\n", len(links), outputPath)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10000, "maximum number of links to export")
	return cmd
}
