package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openlist-contrib/openlist-go/internal/openlist"
)

func newLsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls [path]",
		Short: "List directory contents",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLs,
	}

	cmd.Flags().Int("page", 0, "fetch a single page instead of the whole listing")
	cmd.Flags().Int("per-page", openlist.DefaultPageSize, "entries per page")
	cmd.Flags().Bool("refresh", false, "bypass the server's listing cache")

	return cmd
}

func newStatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stat <path>",
		Short: "Display file or directory metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  runStat,
	}
}

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <keywords> [parent]",
		Short: "Search for files",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runSearch,
	}

	cmd.Flags().String("scope", "all", "restrict results: all, dirs, or files")
	cmd.Flags().Int("page", 1, "page number")
	cmd.Flags().Int("per-page", openlist.DefaultPageSize, "results per page")

	return cmd
}

func newMkdirCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mkdir <path>",
		Short: "Create a directory",
		Args:  cobra.ExactArgs(1),
		RunE:  runMkdir,
	}
}

func newRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <path> <new-name>",
		Short: "Rename a file or directory in place",
		Args:  cobra.ExactArgs(2),
		RunE:  runRename,
	}
}

func newRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <path>...",
		Short: "Delete files or directories",
		Long: `Delete one or more files or directories on the server. Paths sharing a
parent directory are removed in a single call, preserving whatever
atomicity the server provides for multi-name removal.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runRm,
	}
}

func newMvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mv <src-dir> <dst-dir> <name>...",
		Short: "Move files or directories",
		Args:  cobra.MinimumNArgs(3),
		RunE:  runMv,
	}
}

func newCpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cp <src-dir> <dst-dir> <name>...",
		Short: "Copy files or directories",
		Args:  cobra.MinimumNArgs(3),
		RunE:  runCp,
	}
}

// cleanRemotePath normalizes a remote path to have exactly one leading
// slash and no trailing slash. "/" stays "/".
func cleanRemotePath(path string) string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return "/"
	}

	return "/" + trimmed
}

// splitParentAndName splits a remote path into parent directory and name.
// For "/foo/bar/baz" returns ("/foo/bar", "baz").
// For "/baz" returns ("/", "baz").
func splitParentAndName(path string) (string, string) {
	clean := cleanRemotePath(path)

	idx := strings.LastIndex(clean, "/")
	if idx == 0 {
		return "/", clean[1:]
	}

	return clean[:idx], clean[idx+1:]
}

// groupByParent buckets full paths by parent directory, preserving the
// order in which parents first appear.
func groupByParent(paths []string) ([]string, map[string][]string) {
	var order []string

	groups := make(map[string][]string)

	for _, p := range paths {
		parent, name := splitParentAndName(p)
		if _, seen := groups[parent]; !seen {
			order = append(order, parent)
		}

		groups[parent] = append(groups[parent], name)
	}

	return order, groups
}

func runLs(cmd *cobra.Command, args []string) error {
	remotePath := "/"
	if len(args) > 0 {
		remotePath = cleanRemotePath(args[0])
	}

	ctx := cmd.Context()

	client, logger, err := newClient(ctx)
	if err != nil {
		return err
	}

	logger.Debug("ls", "path", remotePath)

	var entries []openlist.Entry

	if cmd.Flags().Changed("page") {
		page, _ := cmd.Flags().GetInt("page")
		perPage, _ := cmd.Flags().GetInt("per-page")
		refresh, _ := cmd.Flags().GetBool("refresh")

		entries, _, err = client.List(ctx, remotePath, page, perPage, refresh)
	} else {
		entries, err = client.ListAll(ctx, remotePath)
	}

	if err != nil {
		return fmt.Errorf("listing %q: %w", remotePath, err)
	}

	if flagJSON {
		return printEntriesJSON(entries)
	}

	printEntriesTable(entries)

	return nil
}

// entryJSON is the JSON output schema for a single entry in ls output.
type entryJSON struct {
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	IsDir    bool   `json:"is_dir"`
	Modified string `json:"modified"`
}

func printEntriesJSON(entries []openlist.Entry) error {
	out := make([]entryJSON, 0, len(entries))
	for i := range entries {
		out = append(out, entryJSON{
			Name:     entries[i].Name,
			Size:     entries[i].Size,
			IsDir:    entries[i].IsDir,
			Modified: entries[i].Modified.UTC().Format("2006-01-02T15:04:05Z"),
		})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	return enc.Encode(out)
}

func printEntriesTable(entries []openlist.Entry) {
	// Sort: directories first, then alphabetical.
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].IsDir != entries[j].IsDir {
			return entries[i].IsDir
		}

		return entries[i].Name < entries[j].Name
	})

	var headers []string
	if stdoutIsTTY() {
		headers = []string{"NAME", "SIZE", "MODIFIED"}
	}

	rows := make([][]string, 0, len(entries))

	for i := range entries {
		name := entries[i].Name
		if entries[i].IsDir {
			name += "/"
		}

		rows = append(rows, []string{name, formatSize(entries[i].Size), formatTime(entries[i].Modified)})
	}

	printTable(os.Stdout, headers, rows)
}

func runStat(cmd *cobra.Command, args []string) error {
	remotePath := cleanRemotePath(args[0])
	ctx := cmd.Context()

	client, logger, err := newClient(ctx)
	if err != nil {
		return err
	}

	logger.Debug("stat", "path", remotePath)

	entry, err := client.Stat(ctx, remotePath)
	if err != nil {
		return fmt.Errorf("stat %q: %w", remotePath, err)
	}

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		return enc.Encode(entryJSON{
			Name:     entry.Name,
			Size:     entry.Size,
			IsDir:    entry.IsDir,
			Modified: entry.Modified.UTC().Format("2006-01-02T15:04:05Z"),
		})
	}

	fmt.Printf("Name:     %s\n", entry.Name)
	fmt.Printf("Size:     %s (%d bytes)\n", formatSize(entry.Size), entry.Size)
	fmt.Printf("Is dir:   %t\n", entry.IsDir)
	fmt.Printf("Modified: %s\n", entry.Modified.Format("2006-01-02 15:04:05"))

	return nil
}

// searchScopes maps the --scope flag to the server's scope values.
var searchScopes = map[string]int{
	"all":   openlist.SearchScopeAll,
	"dirs":  openlist.SearchScopeDirs,
	"files": openlist.SearchScopeFiles,
}

func runSearch(cmd *cobra.Command, args []string) error {
	keywords := args[0]

	parent := "/"
	if len(args) > 1 {
		parent = cleanRemotePath(args[1])
	}

	scopeName, _ := cmd.Flags().GetString("scope")

	scope, ok := searchScopes[scopeName]
	if !ok {
		return fmt.Errorf("invalid --scope %q: must be all, dirs, or files", scopeName)
	}

	page, _ := cmd.Flags().GetInt("page")
	perPage, _ := cmd.Flags().GetInt("per-page")

	ctx := cmd.Context()

	client, _, err := newClient(ctx)
	if err != nil {
		return err
	}

	hits, total, err := client.Search(ctx, parent, keywords, scope, page, perPage)
	if err != nil {
		return fmt.Errorf("searching for %q: %w", keywords, err)
	}

	if flagJSON {
		return printEntriesJSON(hits)
	}

	var headers []string
	if stdoutIsTTY() {
		headers = []string{"PATH", "SIZE", "DIR"}
	}

	rows := make([][]string, 0, len(hits))
	for i := range hits {
		fullPath := strings.TrimSuffix(hits[i].Parent, "/") + "/" + hits[i].Name
		rows = append(rows, []string{fullPath, formatSize(hits[i].Size), strconv.FormatBool(hits[i].IsDir)})
	}

	printTable(os.Stdout, headers, rows)
	statusf("%d of %d result(s)\n", len(hits), total)

	return nil
}

func runMkdir(cmd *cobra.Command, args []string) error {
	remotePath := cleanRemotePath(args[0])
	ctx := cmd.Context()

	client, _, err := newClient(ctx)
	if err != nil {
		return err
	}

	if err := client.Mkdir(ctx, remotePath); err != nil {
		return fmt.Errorf("creating %q: %w", remotePath, err)
	}

	statusf("Created %s\n", remotePath)

	return nil
}

func runRename(cmd *cobra.Command, args []string) error {
	remotePath := cleanRemotePath(args[0])
	newName := args[1]
	ctx := cmd.Context()

	if strings.Contains(newName, "/") {
		return fmt.Errorf("new name %q must not contain a slash; use mv to change directories", newName)
	}

	client, _, err := newClient(ctx)
	if err != nil {
		return err
	}

	if err := client.Rename(ctx, remotePath, newName); err != nil {
		return fmt.Errorf("renaming %q: %w", remotePath, err)
	}

	statusf("Renamed %s -> %s\n", remotePath, newName)

	return nil
}

func runRm(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	client, _, err := newClient(ctx)
	if err != nil {
		return err
	}

	order, groups := groupByParent(args)

	for _, parent := range order {
		names := groups[parent]

		if err := client.Remove(ctx, parent, names...); err != nil {
			return fmt.Errorf("removing from %q: %w", parent, err)
		}

		statusf("Removed %d entr%s from %s\n", len(names), pluralY(len(names)), parent)
	}

	return nil
}

// pluralY returns the y/ies suffix for "entry".
func pluralY(n int) string {
	if n == 1 {
		return "y"
	}

	return "ies"
}

func runMv(cmd *cobra.Command, args []string) error {
	return runTransfer(cmd, args, "moving", "Moved")
}

func runCp(cmd *cobra.Command, args []string) error {
	return runTransfer(cmd, args, "copying", "Copied")
}

// runTransfer implements mv and cp, which share an argument shape and
// differ only in the server call.
func runTransfer(cmd *cobra.Command, args []string, verb, done string) error {
	srcDir := cleanRemotePath(args[0])
	dstDir := cleanRemotePath(args[1])
	names := args[2:]
	ctx := cmd.Context()

	client, _, err := newClient(ctx)
	if err != nil {
		return err
	}

	if verb == "moving" {
		err = client.Move(ctx, srcDir, dstDir, names...)
	} else {
		err = client.Copy(ctx, srcDir, dstDir, names...)
	}

	if err != nil {
		return fmt.Errorf("%s from %q to %q: %w", verb, srcDir, dstDir, err)
	}

	statusf("%s %d entr%s from %s to %s\n", done, len(names), pluralY(len(names)), srcDir, dstDir)

	return nil
}
