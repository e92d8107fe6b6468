package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"
	"strconv"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/Rorical/tunneldesk/internal/config"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage backend profiles",
	Long:  `Manage backend profiles for different tunnel backends and metrics endpoints.`,
}

var listProfilesCmd = &cobra.Command{
	Use:   "list",
	Short: "List all profiles",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		printProfiles(cmd.OutOrStdout(), cfg)
	},
}

var showProfileCmd = &cobra.Command{
	Use:   "show [profile-name]",
	Short: "Show profile details",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		profileName := args[0]
		profile, exists := cfg.Profiles[profileName]
		if !exists {
			log.Fatalf("Profile '%s' does not exist", profileName)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Profile: %s\n", profileName)
		printProfile(out, profile, "")
	},
}

var addProfileCmd = &cobra.Command{
	Use:   "add [profile-name]",
	Short: "Add a new profile",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		var profileName string
		if len(args) > 0 {
			profileName = args[0]
		} else {
			prompt := promptui.Prompt{
				Label:    "Profile name",
				Validate: validateProfileName,
			}
			profileName, err = prompt.Run()
			if err != nil {
				log.Fatalf("Prompt failed: %v", err)
			}
		}

		if _, exists := cfg.Profiles[profileName]; exists {
			log.Fatalf("Profile '%s' already exists", profileName)
		}

		profile, err := promptProfile(config.DefaultProfile())
		if err != nil {
			log.Fatalf("Prompt failed: %v", err)
		}

		cfg.Profiles[profileName] = profile
		if err := cfg.Save(); err != nil {
			log.Fatalf("Failed to save config: %v", err)
		}

		fmt.Printf("Profile '%s' added successfully!\n", profileName)
	},
}

var editProfileCmd = &cobra.Command{
	Use:   "edit [profile-name]",
	Short: "Edit an existing profile",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		profileName, err := pickProfile(cfg, args, "Select profile to edit", "")
		if err != nil {
			log.Fatalf("Selection failed: %v", err)
		}

		profile, exists := cfg.Profiles[profileName]
		if !exists {
			log.Fatalf("Profile '%s' does not exist", profileName)
		}

		profile, err = promptProfile(profile)
		if err != nil {
			log.Fatalf("Prompt failed: %v", err)
		}

		cfg.Profiles[profileName] = profile
		if err := cfg.Save(); err != nil {
			log.Fatalf("Failed to save config: %v", err)
		}

		fmt.Printf("Profile '%s' updated successfully!\n", profileName)
	},
}

var deleteProfileCmd = &cobra.Command{
	Use:   "delete [profile-name]",
	Short: "Delete a profile",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		profileName, err := pickProfile(cfg, args, "Select profile to delete", "")
		if err != nil {
			log.Fatalf("Selection failed: %v", err)
		}

		if _, exists := cfg.Profiles[profileName]; !exists {
			log.Fatalf("Profile '%s' does not exist", profileName)
		}

		confirmPrompt := promptui.Prompt{
			Label:     fmt.Sprintf("Delete profile '%s'? (y/N)", profileName),
			IsConfirm: true,
		}
		if _, err := confirmPrompt.Run(); err != nil {
			fmt.Println("Deletion cancelled")
			return
		}

		removeProfile(cfg, profileName)

		if err := cfg.Save(); err != nil {
			log.Fatalf("Failed to save config: %v", err)
		}

		fmt.Printf("Profile '%s' deleted successfully!\n", profileName)
	},
}

var switchProfileCmd = &cobra.Command{
	Use:   "switch [profile-name]",
	Short: "Switch to a different profile",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		profileName, err := pickProfile(cfg, args, "Select profile to switch to", cfg.ActiveProfile)
		if errors.Is(err, errNoProfiles) {
			fmt.Println("No other profiles available to switch to")
			return
		}
		if err != nil {
			log.Fatalf("Selection failed: %v", err)
		}

		if err := cfg.Use(profileName); err != nil {
			log.Fatalf("Failed to switch profile: %v", err)
		}
		if err := cfg.Save(); err != nil {
			log.Fatalf("Failed to save config: %v", err)
		}

		fmt.Printf("Switched to profile '%s'\n", profileName)
	},
}

var errNoProfiles = errors.New("no profiles available")

// pickProfile returns args[0] when given, otherwise lets the user select one
// of the profiles other than exclude
func pickProfile(cfg *config.Config, args []string, label, exclude string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}

	names := make([]string, 0, len(cfg.Profiles))
	for _, name := range cfg.ProfileNames() {
		if name != exclude {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "", errNoProfiles
	}

	prompt := promptui.Select{
		Label: label,
		Items: names,
	}
	_, name, err := prompt.Run()
	return name, err
}

func promptProfile(profile config.Profile) (config.Profile, error) {
	var err error

	backendPrompt := promptui.Prompt{
		Label:    "Backend URL",
		Default:  profile.BackendURL,
		Validate: validateBackendURL,
	}
	if profile.BackendURL, err = backendPrompt.Run(); err != nil {
		return profile, err
	}

	metricsPrompt := promptui.Prompt{
		Label:    "Metrics URL",
		Default:  profile.MetricsURL,
		Validate: validateMetricsURL,
	}
	if profile.MetricsURL, err = metricsPrompt.Run(); err != nil {
		return profile, err
	}

	bufferPrompt := promptui.Prompt{
		Label:    "Log buffer size",
		Default:  strconv.Itoa(profile.LogBufferSize),
		Validate: validatePositiveInt,
	}
	raw, err := bufferPrompt.Run()
	if err != nil {
		return profile, err
	}
	profile.LogBufferSize, _ = strconv.Atoi(raw)

	delayPrompt := promptui.Prompt{
		Label:    "Reconnect delay",
		Default:  profile.ReconnectDelay.String(),
		Validate: validateDuration,
	}
	if raw, err = delayPrompt.Run(); err != nil {
		return profile, err
	}
	profile.ReconnectDelay, _ = time.ParseDuration(raw)

	retriesPrompt := promptui.Prompt{
		Label:    "Max retries (0 retries forever)",
		Default:  strconv.Itoa(profile.MaxRetries),
		Validate: validateNonNegativeInt,
	}
	if raw, err = retriesPrompt.Run(); err != nil {
		return profile, err
	}
	profile.MaxRetries, _ = strconv.Atoi(raw)

	return profile, nil
}

// removeProfile deletes name and moves the active profile elsewhere when
// needed. Removing the last profile recreates the default one.
func removeProfile(cfg *config.Config, name string) {
	delete(cfg.Profiles, name)
	if len(cfg.Profiles) == 0 {
		cfg.Profiles[config.DefaultProfileName] = config.DefaultProfile()
	}
	if cfg.ActiveProfile == name {
		next := cfg.ProfileNames()[0]
		if err := cfg.Use(next); err != nil {
			cfg.ActiveProfile = next
		}
	}
}

func printProfiles(out io.Writer, cfg *config.Config) {
	fmt.Fprintf(out, "Active Profile: %s\n\n", cfg.ActiveProfile)
	fmt.Fprintln(out, "Available Profiles:")
	for _, name := range cfg.ProfileNames() {
		marker := ""
		if name == cfg.ActiveProfile {
			marker = " (active)"
		}
		fmt.Fprintf(out, "  %s%s\n", name, marker)
		printProfile(out, cfg.Profiles[name], "    ")
		fmt.Fprintln(out)
	}
}

func printProfile(out io.Writer, p config.Profile, indent string) {
	fmt.Fprintf(out, "%sBackend URL: %s\n", indent, p.BackendURL)
	if p.MetricsURL != "" {
		fmt.Fprintf(out, "%sMetrics URL: %s\n", indent, p.MetricsURL)
	}
	if p.LogBufferSize > 0 {
		fmt.Fprintf(out, "%sLog buffer: %d\n", indent, p.LogBufferSize)
	}
	if p.ReconnectDelay > 0 {
		fmt.Fprintf(out, "%sReconnect delay: %s\n", indent, p.ReconnectDelay)
	}
	retries := "forever"
	if p.MaxRetries > 0 {
		retries = strconv.Itoa(p.MaxRetries)
	}
	fmt.Fprintf(out, "%sRetries: %s\n", indent, retries)
}

func validateProfileName(s string) error {
	if s == "" {
		return errors.New("profile name is required")
	}
	return nil
}

func validateBackendURL(s string) error {
	_, err := config.SocketURL(s)
	return err
}

func validateMetricsURL(s string) error {
	u, err := url.ParseRequestURI(s)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	return nil
}

func validatePositiveInt(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	if n <= 0 {
		return errors.New("must be greater than zero")
	}
	return nil
}

func validateNonNegativeInt(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	if n < 0 {
		return errors.New("must not be negative")
	}
	return nil
}

func validateDuration(s string) error {
	d, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	if d <= 0 {
		return errors.New("must be greater than zero")
	}
	return nil
}

func init() {
	// Add subcommands to profile
	profileCmd.AddCommand(listProfilesCmd)
	profileCmd.AddCommand(showProfileCmd)
	profileCmd.AddCommand(addProfileCmd)
	profileCmd.AddCommand(editProfileCmd)
	profileCmd.AddCommand(deleteProfileCmd)
	profileCmd.AddCommand(switchProfileCmd)
}
