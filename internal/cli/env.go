package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"docbench/internal/config"
)

const exampleEnvFile = ".env.example"

var (
	envWriteExample bool
	envStrict       bool
)

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Check the vendor environment variables",
	Long: `Lists the environment variables both vendors need and whether each one
is set. Secret values are never printed. With --write-example a sample
.env.example file is created in the current directory.`,
	Args: cobra.NoArgs,
	RunE: runEnv,
}

func init() {
	envCmd.Flags().BoolVar(&envWriteExample, "write-example", false, "write "+exampleEnvFile+" with placeholder values")
	envCmd.Flags().BoolVar(&envStrict, "strict", false, "exit with an error when a required variable is missing")
	rootCmd.AddCommand(envCmd)
}

func runEnv(cmd *cobra.Command, _ []string) error {
	if err := loadEnvForCheck(); err != nil {
		return err
	}

	statuses := config.CheckEnv(os.LookupEnv)
	cmd.Println("Environment variables:")
	for i := range statuses {
		st := statuses[i]
		switch {
		case st.Set && st.Secret:
			cmd.Printf("  [set]     %s = ********\n", st.Name)
		case st.Set:
			cmd.Printf("  [set]     %s = %s\n", st.Name, st.Value)
		case st.Required:
			cmd.Printf("  [missing] %s (%s)\n", st.Name, st.Description)
		default:
			cmd.Printf("  [unset]   %s (%s)\n", st.Name, st.Description)
		}
	}

	missing := config.MissingRequired(statuses)
	cmd.Println()
	if len(missing) == 0 {
		cmd.Println("All required variables are set.")
	} else {
		cmd.Printf("%d required variable(s) missing.\n", len(missing))
	}

	if envWriteExample {
		if err := os.WriteFile(exampleEnvFile, []byte(config.ExampleEnvFile()), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", exampleEnvFile, err)
		}
		cmd.Printf("Wrote %s; copy it to .env and fill in your values.\n", exampleEnvFile)
	}

	if envStrict && len(missing) > 0 {
		return fmt.Errorf("%w: missing %v", ErrConfig, missing)
	}
	return nil
}

// loadEnvForCheck applies env files without overriding the process
// environment. A missing default .env is not an error.
func loadEnvForCheck() error {
	if len(envFiles) > 0 {
		if err := godotenv.Load(envFiles...); err != nil {
			return fmt.Errorf("%w: %w", ErrConfig, err)
		}
		return nil
	}
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}
	return nil
}
