package prefs

import "os/exec"

// LookPathFunc resolves an executable name, like exec.LookPath.
type LookPathFunc func(file string) (string, error)

// Package managers in probe order.
const (
	ManagerApt     = "apt"
	ManagerPacman  = "pacman"
	ManagerDnf     = "dnf"
	ManagerZypper  = "zypper"
	ManagerFlatpak = "flatpak"
	ManagerUnknown = "unknown"
)

var probeOrder = []string{ManagerApt, ManagerPacman, ManagerDnf, ManagerZypper, ManagerFlatpak}

var installCommands = map[string]string{
	ManagerApt:     "sudo apt install -y",
	ManagerPacman:  "sudo pacman -S --noconfirm",
	ManagerDnf:     "sudo dnf install -y",
	ManagerZypper:  "sudo zypper install -y",
	ManagerFlatpak: "flatpak install -y",
	ManagerUnknown: "echo 'Package manager not detected. Please install manually:'",
}

var packageNames = map[string]string{
	ManagerApt:     "ratbagd",
	ManagerPacman:  "ratbagd",
	ManagerDnf:     "libratbag",
	ManagerZypper:  "libratbag",
	ManagerFlatpak: "org.libratbag.ratbagd",
	ManagerUnknown: "ratbagd",
}

// Managers returns every selectable package manager name, unknown last.
func Managers() []string {
	return append(append([]string{}, probeOrder...), ManagerUnknown)
}

// DetectPackageManager returns the first manager found on PATH.
func DetectPackageManager(lookPath LookPathFunc) string {
	for _, pm := range probeOrder {
		if _, err := lookPath(pm); err == nil {
			return pm
		}
	}
	return ManagerUnknown
}

// InstallCommandFor returns the install command template for a manager.
// Unrecognized names get the unknown template.
func InstallCommandFor(manager string) string {
	if cmd, ok := installCommands[manager]; ok {
		return cmd
	}
	return installCommands[ManagerUnknown]
}

// PackageNameFor returns the package providing the device tool for a manager.
func PackageNameFor(manager string) string {
	if name, ok := packageNames[manager]; ok {
		return name
	}
	return packageNames[ManagerUnknown]
}

// HasSystemd reports whether systemctl is on PATH.
func HasSystemd(lookPath LookPathFunc) bool {
	_, err := lookPath("systemctl")
	return err == nil
}

func defaultLookPath(file string) (string, error) {
	return exec.LookPath(file)
}
