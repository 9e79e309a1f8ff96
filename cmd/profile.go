package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/Rorical/RoriVoice/internal/config"
	"github.com/Rorical/RoriVoice/internal/detection"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage endpoint profiles",
	Long:  `Manage profiles holding the detection endpoint, API key and request defaults.`,
}

var listProfilesCmd = &cobra.Command{
	Use:   "list",
	Short: "List all profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Active Profile: %s\n\n", cfg.ActiveProfile)
		fmt.Fprintln(out, "Available Profiles:")
		for _, name := range cfg.ProfileNames() {
			profile := cfg.Profiles[name]
			marker := ""
			if name == cfg.ActiveProfile {
				marker = " (active)"
			}
			fmt.Fprintf(out, "  %s%s\n", name, marker)
			fmt.Fprintf(out, "    Endpoint: %s\n", profile.Endpoint)
			fmt.Fprintf(out, "    Language: %s\n", profile.Language)
			fmt.Fprintf(out, "    API Key: %s\n", yesNo(profile.APIKey != ""))
			fmt.Fprintln(out)
		}
		return nil
	},
}

var showProfileCmd = &cobra.Command{
	Use:   "show [profile-name]",
	Short: "Show profile details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		profileName := args[0]
		profile, exists := cfg.Profiles[profileName]
		if !exists {
			return fmt.Errorf("profile '%s' does not exist", profileName)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Profile: %s\n", profileName)
		fmt.Fprintf(out, "Endpoint: %s\n", profile.Endpoint)
		fmt.Fprintf(out, "Language: %s\n", profile.Language)
		fmt.Fprintf(out, "Audio Format: %s\n", profile.AudioFormat)
		fmt.Fprintf(out, "Timeout: %s\n", profile.Timeout.ToDuration())
		hasKey := "Not set"
		if profile.APIKey != "" {
			hasKey = "Set (hidden for security)"
		}
		fmt.Fprintf(out, "API Key: %s\n", hasKey)
		return nil
	},
}

var addProfileCmd = &cobra.Command{
	Use:   "add [profile-name]",
	Short: "Add a new profile",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		var profileName string
		if len(args) > 0 {
			profileName = args[0]
		} else {
			prompt := promptui.Prompt{
				Label:    "Profile name",
				Validate: notBlank,
			}
			profileName, err = prompt.Run()
			if err != nil {
				return fmt.Errorf("prompt failed: %w", err)
			}
		}
		profileName = strings.TrimSpace(profileName)

		if _, exists := cfg.Profiles[profileName]; exists {
			return fmt.Errorf("profile '%s' already exists", profileName)
		}

		profile, err := promptProfile(config.DefaultProfile())
		if err != nil {
			return err
		}
		cfg.Profiles[profileName] = profile

		if err := cfg.Save(); err != nil {
			return fmt.Errorf("save config: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Profile '%s' added successfully!\n", profileName)
		return nil
	},
}

var editProfileCmd = &cobra.Command{
	Use:   "edit [profile-name]",
	Short: "Edit an existing profile",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		profileName, err := pickProfile(cfg, args, "Select profile to edit", "")
		if err != nil {
			return err
		}

		profile, exists := cfg.Profiles[profileName]
		if !exists {
			return fmt.Errorf("profile '%s' does not exist", profileName)
		}

		profile, err = promptProfile(profile)
		if err != nil {
			return err
		}
		cfg.Profiles[profileName] = profile

		if err := cfg.Save(); err != nil {
			return fmt.Errorf("save config: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Profile '%s' updated successfully!\n", profileName)
		return nil
	},
}

var deleteProfileCmd = &cobra.Command{
	Use:   "delete [profile-name]",
	Short: "Delete a profile",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		profileName, err := pickProfile(cfg, args, "Select profile to delete", "")
		if err != nil {
			return err
		}
		if _, exists := cfg.Profiles[profileName]; !exists {
			return fmt.Errorf("profile '%s' does not exist", profileName)
		}

		confirmPrompt := promptui.Prompt{
			Label:     fmt.Sprintf("Delete profile '%s'", profileName),
			IsConfirm: true,
		}
		if _, err := confirmPrompt.Run(); err != nil {
			fmt.Fprintln(cmd.OutOrStdout(), "Deletion cancelled")
			return nil
		}

		removeProfile(cfg, profileName)

		if err := cfg.Save(); err != nil {
			return fmt.Errorf("save config: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Profile '%s' deleted successfully!\n", profileName)
		return nil
	},
}

var switchProfileCmd = &cobra.Command{
	Use:   "switch [profile-name]",
	Short: "Switch to a different profile",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if len(args) == 0 && len(cfg.Profiles) < 2 {
			fmt.Fprintln(cmd.OutOrStdout(), "No other profiles available to switch to")
			return nil
		}
		profileName, err := pickProfile(cfg, args, "Select profile to switch to", cfg.ActiveProfile)
		if err != nil {
			return err
		}

		if err := cfg.UseProfile(profileName); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("save config: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Switched to profile '%s'\n", profileName)
		return nil
	},
}

func init() {
	profileCmd.AddCommand(listProfilesCmd)
	profileCmd.AddCommand(showProfileCmd)
	profileCmd.AddCommand(addProfileCmd)
	profileCmd.AddCommand(editProfileCmd)
	profileCmd.AddCommand(deleteProfileCmd)
	profileCmd.AddCommand(switchProfileCmd)
}

// pickProfile returns args[0] or lets the user select a profile,
// leaving out exclude.
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
		return "", errors.New("no profiles available")
	}

	prompt := promptui.Select{
		Label: label,
		Items: names,
	}
	_, name, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("selection failed: %w", err)
	}
	return name, nil
}

// promptProfile asks for every profile field, offering the current
// values as defaults.
func promptProfile(current config.Profile) (config.Profile, error) {
	p := current

	endpointPrompt := promptui.Prompt{
		Label:   "Endpoint URL",
		Default: current.Endpoint,
		Validate: func(s string) error {
			if !detection.ValidEndpoint(strings.TrimSpace(s)) {
				return errors.New(detection.MsgBadEndpoint)
			}
			return nil
		},
	}
	endpoint, err := endpointPrompt.Run()
	if err != nil {
		return p, fmt.Errorf("prompt failed: %w", err)
	}
	p.Endpoint = strings.TrimSpace(endpoint)

	apiKeyPrompt := promptui.Prompt{
		Label:   "API Key (optional)",
		Default: current.APIKey,
		Mask:    '*',
	}
	p.APIKey, err = apiKeyPrompt.Run()
	if err != nil {
		return p, fmt.Errorf("prompt failed: %w", err)
	}

	languagePrompt := promptui.Select{
		Label:     "Default language",
		Items:     detection.SupportedLanguages,
		CursorPos: languageIndex(current.Language),
	}
	_, p.Language, err = languagePrompt.Run()
	if err != nil {
		return p, fmt.Errorf("selection failed: %w", err)
	}

	formatPrompt := promptui.Prompt{
		Label:    "Audio format",
		Default:  current.AudioFormat,
		Validate: notBlank,
	}
	p.AudioFormat, err = formatPrompt.Run()
	if err != nil {
		return p, fmt.Errorf("prompt failed: %w", err)
	}

	timeoutPrompt := promptui.Prompt{
		Label:   "Request timeout",
		Default: current.Timeout.ToDuration().String(),
		Validate: func(s string) error {
			d, err := time.ParseDuration(strings.TrimSpace(s))
			if err != nil {
				return err
			}
			if d <= 0 {
				return errors.New("timeout must be positive")
			}
			return nil
		},
	}
	timeout, err := timeoutPrompt.Run()
	if err != nil {
		return p, fmt.Errorf("prompt failed: %w", err)
	}
	d, _ := time.ParseDuration(strings.TrimSpace(timeout))
	p.Timeout = config.Duration(d)

	return config.NormalizeProfile(p), nil
}

// removeProfile deletes name. When it was active, the first remaining
// profile takes over; deleting the last one recreates the default.
func removeProfile(cfg *config.Config, name string) {
	delete(cfg.Profiles, name)
	if len(cfg.Profiles) == 0 {
		cfg.Profiles[config.DefaultProfileName] = config.DefaultProfile()
	}
	if cfg.ActiveProfile == name || cfg.ActiveProfile == "" {
		cfg.ActiveProfile = cfg.ProfileNames()[0]
	}
}

func languageIndex(lang string) int {
	for i, l := range detection.SupportedLanguages {
		if strings.EqualFold(l, lang) {
			return i
		}
	}
	return 0
}

func notBlank(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("value cannot be empty")
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
