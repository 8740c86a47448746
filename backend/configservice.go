package backend

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// AppConfig is the application-level configuration, as opposed to per-project
// settings stored inside project files.
type AppConfig struct {
	TransitionTime int    `json:"transitionTime" koanf:"transition_time"`
	DefaultDelay   int    `json:"defaultDelay" koanf:"default_delay"`
	WindowWidth    int    `json:"windowWidth" koanf:"window_width"`
	WindowHeight   int    `json:"windowHeight" koanf:"window_height"`
	StorePixmaps   bool   `json:"storePixmaps" koanf:"store_pixmaps"`
	LastProjectDir string `json:"lastProjectDir" koanf:"last_project_dir"`
}

var MultivisionAppConfig AppConfig
var ConfigPath string

var DefaultAppConfig = AppConfig{
	TransitionTime: 1000,
	DefaultDelay:   5000,
	WindowWidth:    1280,
	WindowHeight:   800,
	StorePixmaps:   true,
	LastProjectDir: "",
}

type ConfigService struct{}

func NewConfigService() *ConfigService {
	return &ConfigService{}
}

func (g *ConfigService) GetConfig() AppConfig {
	initConfigPath()
	if _, err := os.Stat(ConfigPath); os.IsNotExist(err) {
		fmt.Println("Created a new multivision config")
		MultivisionAppConfig = DefaultAppConfig
		saveAppConfig()
	}

	file, _ := os.ReadFile(ConfigPath)
	if len(file) == 0 {
		fmt.Println("config file is empty")
		MultivisionAppConfig = DefaultAppConfig
	} else {
		MultivisionAppConfig = loadAppConfig()
	}

	log.Println("Multivision Config", MultivisionAppConfig)
	return MultivisionAppConfig
}

func (g *ConfigService) UpdateConfig(config AppConfig) error {
	// Validate some values
	if config.TransitionTime < 0 || config.TransitionTime > 60000 {
		return fmt.Errorf("transition time must be between 0 and 60000 ms")
	}
	if config.DefaultDelay < 0 || config.DefaultDelay > 600000 {
		return fmt.Errorf("default delay must be between 0 and 600000 ms")
	}
	if config.WindowWidth < 640 || config.WindowHeight < 480 {
		return fmt.Errorf("window size must be at least 640x480")
	}

	MultivisionAppConfig = config
	return saveAppConfig()
}

func initConfigPath() {
	// First try portable config in executable directory
	wdDir, err := os.Getwd()
	if err == nil {
		portableConfigPath := filepath.Join(wdDir, "multivision.config")

		// If config exists in executable directory, use it
		if _, err := os.Stat(portableConfigPath); err == nil {
			ConfigPath = portableConfigPath
			return
		}
	}

	// Fall back to default location
	userConfigDir := filepath.Join(getUserConfigDir(), "/multivision")
	ConfigPath = filepath.Join(userConfigDir, "multivision.config")
}

func getUserConfigDir() string {
	dirname, err := os.UserConfigDir()
	if err != nil {
		log.Fatal(err)
	}
	return dirname
}

func saveAppConfig() error {
	initConfigPath()
	k := koanf.New(".")

	err := k.Load(structs.Provider(MultivisionAppConfig, "koanf"), nil)
	if err != nil {
		fmt.Println(err)
		return err
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(ConfigPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %v", err)
	}

	b, err := k.Marshal(yaml.Parser())
	if err != nil {
		fmt.Println(err)
		return err
	}

	err = os.WriteFile(ConfigPath, b, 0644)
	if err != nil {
		fmt.Println(err)
		return err
	}

	return nil
}

func loadAppConfig() AppConfig {
	var c AppConfig
	var k = koanf.New(".")
	if err := k.Load(file.Provider(ConfigPath), yaml.Parser()); err != nil {
		log.Printf("error parsing multivision app config: %v", err)
		return DefaultAppConfig
	}
	err := k.Unmarshal("", &c)
	if err != nil {
		log.Printf("error unmarshaling multivision app config: %v", err)
		return DefaultAppConfig
	}

	// Validate and set defaults for invalid values
	if c.TransitionTime < 0 || c.TransitionTime > 60000 {
		c.TransitionTime = DefaultAppConfig.TransitionTime
	}
	if c.DefaultDelay < 0 || c.DefaultDelay > 600000 {
		c.DefaultDelay = DefaultAppConfig.DefaultDelay
	}
	if c.WindowWidth < 640 {
		c.WindowWidth = DefaultAppConfig.WindowWidth
	}
	if c.WindowHeight < 480 {
		c.WindowHeight = DefaultAppConfig.WindowHeight
	}

	return c
}
