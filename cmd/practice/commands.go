package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pavelanni/practice/internal/llm/prompts"
	"github.com/pavelanni/practice/internal/model"
	"github.com/pavelanni/practice/internal/store"
)

func generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate one task and print it as JSON",
		RunE:  runGenerate,
	}
	f := cmd.Flags()
	f.StringP("topic", "t", "", "Grammar or vocabulary topic (default: stored genTopic)")
	f.String("type", string(model.TypeMCQ), "Task type ("+typeNames()+")")
	f.IntP("items", "n", 0, "Number of items (0 = per-type default)")
	f.String("seed", "", "Seed id used for generated task ids (default: derived from the topic)")
	f.String("token", "", "Generation token (default: stored gptToken)")
	f.Bool("save", true, "Record the task in the generated-task history")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	addStoreFlags(cmd)
	addLLMFlags(cmd)
	addLogFlags(cmd)
	return cmd
}

func validateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate FILE...",
		Short: "Check task-set files against the task schemas",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runValidate,
	}
	addLogFlags(cmd)
	return cmd
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Read or change stored settings (" + strings.Join(settingKeys, ", ") + ")",
	}

	get := &cobra.Command{
		Use:   "get KEY",
		Short: "Print a stored setting",
		Args:  cobra.ExactArgs(1),
		RunE:  runConfigGet,
	}
	set := &cobra.Command{
		Use:   "set KEY [VALUE]",
		Short: "Store a setting; without VALUE the key is removed",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runConfigSet,
	}
	for _, c := range []*cobra.Command{get, set} {
		addStoreFlags(c)
		addLogFlags(c)
	}
	cmd.AddCommand(get, set)
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export generated tasks as a practice task set",
		RunE:  runExport,
	}
	f := cmd.Flags()
	f.StringP("topic", "t", "", "Export only tasks of this topic (default: all)")
	f.String("level", model.DefaultLevel, "Level written into the task set")
	f.Bool("topics", false, "List the topics with generated tasks instead")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	addStoreFlags(cmd)
	addLogFlags(cmd)
	return cmd
}

var settingKeys = []string{store.KeyGPTToken, store.KeyGenTopic}

func typeNames() string {
	names := make([]string, len(model.Types))
	for i, t := range model.Types {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	st, err := db.Settings()
	if err != nil {
		return fmt.Errorf("read settings: %w", err)
	}
	topic := strings.TrimSpace(v.GetString("topic"))
	if topic == "" {
		topic = st.GenTopic
	}
	token := v.GetString("token")
	if token == "" {
		token = st.GPTToken
	}
	if token == "" && !serverKey(v) {
		return errors.New("no generation token: run `practice config set gptToken TOKEN` or pass --token")
	}

	client, err := newClient(v)
	if err != nil {
		return fmt.Errorf("create generation client: %w", err)
	}

	req, err := prompts.New(prompts.Config{Token: token, Model: v.GetString("llm-model")}).
		Build(topic, v.GetString("type"), prompts.Options{
			Language: v.GetString("lang"),
			Items:    v.GetInt("items"),
			SeedID:   v.GetString("seed"),
		})
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	task, err := client.Generate(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("generate %s task: %w", req.Type, err)
	}

	if v.GetBool("save") {
		if _, err := db.InsertGeneratedTask(topic, *task); err != nil {
			return fmt.Errorf("record task: %w", err)
		}
		if err := db.SetSetting(store.KeyGenTopic, topic); err != nil {
			return fmt.Errorf("save topic: %w", err)
		}
	}
	slog.Info("generated task", "topic", topic, "type", task.Type, "items", len(task.Items)+len(task.Pairs))

	return writeJSON(v.GetString("output"), task)
}

func runValidate(cmd *cobra.Command, args []string) error {
	setupLogging(cmd)

	out := cmd.OutOrStdout()
	failed := 0
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		problems, err := model.CheckTaskSet(data)
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", path, err)
			failed++
			continue
		}
		if len(problems) == 0 {
			fmt.Fprintf(out, "%s: ok\n", path)
			continue
		}
		failed++
		for _, p := range problems {
			fmt.Fprintf(out, "%s: %v\n", path, p)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files have problems", failed, len(args))
	}
	return nil
}

func checkSettingKey(key string) error {
	if !slices.Contains(settingKeys, key) {
		return fmt.Errorf("unknown setting %q (known: %s)", key, strings.Join(settingKeys, ", "))
	}
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)
	if err := checkSettingKey(args[0]); err != nil {
		return err
	}

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	value, err := db.Setting(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)
	key := args[0]
	if err := checkSettingKey(key); err != nil {
		return err
	}

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if len(args) == 1 {
		if err := db.DeleteSetting(key); err != nil {
			return fmt.Errorf("remove %s: %w", key, err)
		}
		slog.Info("setting removed", "key", key)
		return nil
	}
	if err := db.SetSetting(key, args[1]); err != nil {
		return fmt.Errorf("store %s: %w", key, err)
	}
	slog.Info("setting stored", "key", key)
	return nil
}

func runExport(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if v.GetBool("topics") {
		topics, err := db.ListTopics()
		if err != nil {
			return fmt.Errorf("list topics: %w", err)
		}
		for _, t := range topics {
			fmt.Fprintln(cmd.OutOrStdout(), t)
		}
		return nil
	}

	set, err := db.ExportTaskSet(v.GetString("topic"), v.GetString("level"))
	if err != nil {
		return fmt.Errorf("export tasks: %w", err)
	}
	if len(set.Tasks) == 0 {
		slog.Warn("no generated tasks to export", "topic", v.GetString("topic"))
	}
	return writeJSON(v.GetString("output"), set)
}

// writeJSON writes value as indented JSON to outPath, or stdout for "-".
func writeJSON(outPath string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}

	var w io.Writer
	if outPath == "" || outPath == "-" {
		w = os.Stdout
	} else {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	// Ensure trailing newline.
	_, _ = fmt.Fprintln(w)
	return nil
}
