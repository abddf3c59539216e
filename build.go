//go:build ignore

// build.go - OCC ratio tools build script
// Usage: go run build.go [-target=TARGET] [-v]
// Targets: all, ratio-report, risk-report, test, clean

package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

var (
	distDir = "dist"

	// Commands under ./cmd built by "all"
	executables = []string{"ratio-report", "risk-report"}

	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
)

func main() {
	target := flag.String("target", "all", "Build target")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	printHeader()
	startTime := time.Now()

	switch *target {
	case "all":
		for _, name := range executables {
			buildExecutable(name, *verbose)
		}
	case "ratio-report", "risk-report":
		buildExecutable(*target, *verbose)
	case "test":
		runTests(*verbose)
	case "clean":
		clean()
	default:
		showHelp()
		os.Exit(1)
	}

	printSuccess(fmt.Sprintf("Build completed in %s", time.Since(startTime).Round(time.Millisecond)))
}

func printHeader() {
	fmt.Println(colorCyan + "===========================================" + colorReset)
	fmt.Println(colorCyan + "      OCC Ratio Tools - Build System       " + colorReset)
	fmt.Println(colorCyan + "===========================================" + colorReset)
	fmt.Println()
}

func printInfo(msg string) {
	fmt.Printf("%s[INFO]%s %s\n", colorBlue, colorReset, msg)
}

func printSuccess(msg string) {
	fmt.Printf("%s[SUCCESS]%s %s\n", colorGreen, colorReset, msg)
}

func printError(msg string) {
	fmt.Printf("%s[ERROR]%s %s\n", colorRed, colorReset, msg)
}

// buildExecutable compiles ./cmd/name into dist/
func buildExecutable(name string, verbose bool) {
	printInfo(fmt.Sprintf("Building %s...", name))

	exeName := name
	if runtime.GOOS == "windows" {
		exeName += ".exe"
	}
	outputPath := filepath.Join(distDir, exeName)

	ldflags := fmt.Sprintf("-s -w -X occratios/pkg/contracts.BuildTime=%s -X occratios/pkg/contracts.GitCommit=%s",
		time.Now().Format(time.RFC3339), gitCommit())
	args := []string{"build", "-trimpath", "-ldflags", ldflags, "-o", outputPath, "./cmd/" + name}
	if verbose {
		args = append([]string{"build", "-v"}, args[1:]...)
		fmt.Printf("Running: go %s\n", strings.Join(args, " "))
	}

	cmd := exec.Command("go", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		printError(fmt.Sprintf("Failed to build %s: %v", name, err))
		os.Exit(1)
	}

	if info, err := os.Stat(outputPath); err == nil {
		sizeMB := float64(info.Size()) / 1024 / 1024
		printSuccess(fmt.Sprintf("Built %s (%.1f MB)", exeName, sizeMB))
	}
}

func gitCommit() string {
	out, err := exec.Command("git", "rev-parse", "--short", "HEAD").Output()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(out))
}

func runTests(verbose bool) {
	printInfo("Running Go tests...")
	args := []string{"test", "-race"}
	if verbose {
		args = append(args, "-v")
	}
	args = append(args, "./...")

	cmd := exec.Command("go", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		printError(fmt.Sprintf("Go tests failed: %v", err))
		os.Exit(1)
	}
	printSuccess("All tests passed")
}

func clean() {
	printInfo("Cleaning build artifacts...")
	if err := os.RemoveAll(distDir); err != nil {
		printError(fmt.Sprintf("Failed to clean %s: %v", distDir, err))
		os.Exit(1)
	}
	printSuccess("Build artifacts cleaned")
}

func showHelp() {
	fmt.Println("Usage: go run build.go [-target=TARGET] [-v]")
	fmt.Println()
	fmt.Println("Targets:")
	fmt.Println("  all           Build ratio-report and risk-report (default)")
	fmt.Println("  ratio-report  Build the ratio summary command")
	fmt.Println("  risk-report   Build the failure-rate cross-tab command")
	fmt.Println("  test          Run Go tests with the race detector")
	fmt.Println("  clean         Remove dist/")
}
