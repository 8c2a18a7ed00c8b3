package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/abatilo/studytrack/internal/config"
	sterrors "github.com/abatilo/studytrack/internal/errors"
	"github.com/abatilo/studytrack/internal/output"
	"github.com/abatilo/studytrack/internal/storage"
	"github.com/abatilo/studytrack/internal/task"
	"github.com/abatilo/studytrack/internal/tracker"
)

//nolint:gochecknoglobals // CLI flags, config and formatter are package-level by design
var (
	jsonOutput bool
	noColor    bool
	configPath string
	cfg        *config.Config
	formatter  output.Formatter
	logger     = log.New(os.Stderr, "studytrack: ", 0)
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "studytrack",
		Short: "A personal tracker for assignments and deadlines",
		Long: "studytrack - A personal tracker for assignments, projects and study sessions.\n\n" +
			"Run without a command to start the interactive menu.",
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			setFormatter(!noColor)

			var err error
			cfg, err = config.Load(configPath, cmd.Flags())
			if err != nil {
				printError(err)
			}
			setFormatter(cfg.Color)
		},
		Run: func(_ *cobra.Command, _ []string) {
			runMenu()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	flags.String("file", "", "Task file (default "+storage.DefaultFile+")")
	flags.String("format", "", "Task file format: json, yaml or toml (default: from file extension)")
	flags.BoolVar(&noColor, "no-color", false, "Disable colored output")
	flags.StringVar(&configPath, "config", "", "Config file (default ~/.config/studytrack/config.yaml)")

	rootCmd.AddCommand(
		addCmd(),
		listCmd(),
		showCmd(),
		doneCmd(),
		statusCmd(),
		rmCmd(),
		configCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setFormatter(useColor bool) {
	if jsonOutput {
		formatter = output.NewJSONFormatter()
	} else {
		formatter = output.NewHumanFormatter(useColor)
	}
}

// getCollection opens the configured task file. A corrupt file is reported
// on stderr and replaced by an empty collection.
func getCollection() (*tracker.Collection, *storage.Store, error) {
	store, err := storage.NewStore(cfg.DataFile, storage.Format(cfg.Format))
	if err != nil {
		return nil, nil, err
	}

	tasks, err := tracker.Open(store)
	var corrupt sterrors.StorageCorruptError
	if errors.As(err, &corrupt) {
		logger.Printf("warning: %v", err)
		return tasks, store, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return tasks, store, nil
}

func mustCollection() *tracker.Collection {
	tasks, _, err := getCollection()
	if err != nil {
		printError(err)
	}
	return tasks
}

func parseID(s string) int {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		printError(InvalidIDError{Value: s})
	}
	return id
}

func printOutput(s string) {
	os.Stdout.WriteString(s) //nolint:gosec // stdout write errors are unrecoverable
}

func printError(err error) {
	os.Stdout.WriteString(formatter.FormatError(err)) //nolint:gosec // stdout write errors are unrecoverable
	os.Exit(1)
}

// addCmd implements 'studytrack add'.
func addCmd() *cobra.Command {
	var description, due, priority string
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a new task",
		Args:  cobra.ExactArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			tasks := mustCollection()

			t, err := tasks.Add(args[0], description, due, priority)
			if err != nil {
				printError(err)
			}
			printOutput(formatter.FormatTask(t))
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "Task description (required)")
	cmd.Flags().StringVar(&due, "due", "", "Due date, YYYY-MM-DD (required)")
	cmd.Flags().StringVarP(&priority, "priority", "p", string(task.PriorityMedium), "Priority (high, medium, low)")
	return cmd
}

// listCmd implements 'studytrack list'.
func listCmd() *cobra.Command {
	var sortBy string
	var showPending, showCompleted bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Run: func(_ *cobra.Command, _ []string) {
			if showPending && showCompleted {
				printError(ConflictingFlagsError{First: "pending", Second: "completed"})
			}
			key := tracker.SortKey(sortBy)
			if !tracker.IsValidSortKey(key) {
				printError(sterrors.InvalidSortError{Value: sortBy})
			}

			opts := tracker.ListOptions{SortBy: key}
			switch {
			case showPending:
				opts.Status = task.StatusPending
			case showCompleted:
				opts.Status = task.StatusCompleted
			}

			tasks := mustCollection()
			printOutput(formatter.FormatTaskList(tasks.List(opts)))
		},
	}
	cmd.Flags().StringVar(&sortBy, "sort", string(tracker.SortByDueDate), "Sort by due_date, priority or title")
	cmd.Flags().BoolVar(&showPending, "pending", false, "Show only pending tasks")
	cmd.Flags().BoolVar(&showCompleted, "completed", false, "Show only completed tasks")
	return cmd
}

// showCmd implements 'studytrack show'.
func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show task details",
		Args:  cobra.ExactArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			id := parseID(args[0])
			tasks := mustCollection()

			t, err := tasks.Get(id)
			if err != nil {
				printError(err)
			}
			printOutput(formatter.FormatTask(t))
		},
	}
}

// doneCmd implements 'studytrack done'.
func doneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a task as completed",
		Args:  cobra.ExactArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			setStatus(parseID(args[0]), string(task.StatusCompleted))
		},
	}
}

// statusCmd implements 'studytrack status'.
func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Set a task's status (pending, completed)",
		Args:  cobra.ExactArgs(2), //nolint:mnd // CLI takes 2 positional args
		Run: func(_ *cobra.Command, args []string) {
			setStatus(parseID(args[0]), args[1])
		},
	}
}

func setStatus(id int, status string) {
	tasks := mustCollection()

	t, err := tasks.UpdateStatus(id, status)
	var unchanged sterrors.StatusUnchangedError
	if errors.As(err, &unchanged) {
		printOutput(formatter.FormatMessage(unchanged.Error()))
		return
	}
	if err != nil {
		printError(err)
	}
	printOutput(formatter.FormatTask(t))
}

// rmCmd implements 'studytrack rm'.
func rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a task",
		Args:  cobra.ExactArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			id := parseID(args[0])
			tasks := mustCollection()

			t, err := tasks.Delete(id)
			if err != nil {
				printError(err)
			}
			printOutput(formatter.FormatMessage(fmt.Sprintf("Removed task %d (%s)", t.ID, t.Title)))
		},
	}
}

// configCmd implements 'studytrack config'.
func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Run: func(_ *cobra.Command, _ []string) {
			out, err := config.Marshal(cfg)
			if err != nil {
				printError(err)
			}
			printOutput(out)
		},
	}
	cmd.AddCommand(configInitCmd())
	return cmd
}

// configInitCmd implements 'studytrack config init'.
func configInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default config file",
		// The file may not exist yet, so skip loading it.
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			setFormatter(!noColor)
		},
		Run: func(_ *cobra.Command, _ []string) {
			path := configPath
			if path == "" {
				path = config.DefaultPath()
			}
			if path == "" {
				printError(errors.New("no home directory; pass --config"))
			}
			if err := config.WriteDefault(path, force); err != nil {
				printError(err)
			}
			printOutput(formatter.FormatMessage("Wrote " + path))
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing config file")
	return cmd
}

func runMenu() {
	tasks, store, err := getCollection()
	if err != nil {
		printError(err)
	}

	if tasks.Len() > 0 {
		printOutput(formatter.FormatMessage(fmt.Sprintf("Loaded %d tasks from '%s'.", tasks.Len(), store.Path())))
	} else {
		printOutput(formatter.FormatWarning(fmt.Sprintf("No tasks in '%s' yet. Starting with an empty collection.", store.Path())))
	}

	m := newMenu(tasks, output.NewHumanFormatter(cfg.Color), cfg.Color, os.Stdin, os.Stdout)
	if err := m.run(); err != nil {
		printError(err)
	}
}
