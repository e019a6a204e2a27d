package banner

import (
	"fmt"

	"ets/pkg/config"
)

const banner = `
███████╗████████╗███████╗
██╔════╝╚══██╔══╝██╔════╝
█████╗     ██║   ███████╗
██╔══╝     ██║   ╚════██║
███████╗   ██║   ███████║
╚══════╝   ╚═╝   ╚══════╝
`

// Print writes the startup banner with the effective configuration summary.
func Print(eff config.Effective, version string) {
	cfg := eff.Config

	fmt.Print(banner)
	fmt.Println("== Config =====================================================")
	fmt.Printf("Listen:   %s\n", eff.Addr)
	if version != "" {
		fmt.Printf("Version:  %s\n", version)
	}
	fmt.Printf("Config:   %s\n", eff.Source)
	fmt.Printf("Limits:   %d instances, %d messages each\n",
		cfg.Limits.MaxInstances, cfg.Limits.MaxMessages)
	if cfg.Journal.Path != "" {
		fmt.Printf("Journal:  %s\n", cfg.Journal.Path)
	} else {
		fmt.Println("Journal:  disabled")
	}
	if cfg.Reaper.Enabled {
		fmt.Printf("Reaper:   %s\n", cfg.Reaper.Cron)
	} else {
		fmt.Println("Reaper:   disabled")
	}

	fmt.Println("\n== Examples ===================================================")
	fmt.Printf("curl -X PUT 'http://localhost%s/api/v1/instance' -d '{\"email\":\"a@b.c\",\"password\":\"secret\",\"backend\":\"staging\",\"name\":\"a\"}'\n", eff.Addr)
	fmt.Printf("curl -X POST 'http://localhost%s/api/v1/instance/<id>/sendText' -d '{\"conversationId\":\"c1\",\"text\":\"hello\"}'\n", eff.Addr)
	fmt.Printf("curl 'http://localhost%s/api/v1/instances'\n", eff.Addr)
}
