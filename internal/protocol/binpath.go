package protocol

import (
	"bufio"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Command is a resolved agent binary invocation: the program to exec and
// any leading arguments (a node interpreter when the binary is a
// shebang-node script that the OS cannot exec directly).
type Command struct {
	Program string
	Args    []string
}

// ResolveCommand resolves the agent binary, following symlinks and
// detecting npm-installed launchers that need an explicit node.
func ResolveCommand(bin, nodeBin string) Command {
	if strings.TrimSpace(bin) == "" {
		bin = "codex"
	}
	path := bin
	if resolved, err := filepath.EvalSymlinks(bin); err == nil {
		path = resolved
	}
	if !shebangRequiresNode(firstLine(path)) {
		return Command{Program: bin}
	}
	node := strings.TrimSpace(nodeBin)
	if node == "" {
		node = suggestNodePath(path)
	}
	if node == "" {
		return Command{Program: bin}
	}
	return Command{Program: node, Args: []string{path}}
}

func firstLine(path string) string {
	file, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer file.Close()
	scanner := bufio.NewScanner(file)
	if !scanner.Scan() {
		return ""
	}
	return strings.TrimRight(scanner.Text(), "\r")
}

func shebangRequiresNode(line string) bool {
	if !strings.HasPrefix(line, "#!") {
		return false
	}
	return strings.Contains(strings.ToLower(strings.TrimSpace(line[2:])), "node")
}

// suggestNodePath checks for a node binary next to the script, the usual
// layout of npm global installs.
func suggestNodePath(scriptPath string) string {
	candidate := filepath.Join(filepath.Dir(scriptPath), "node")
	info, err := os.Stat(candidate)
	if err != nil || info.IsDir() {
		return ""
	}
	if runtime.GOOS != "windows" && info.Mode().Perm()&0o111 == 0 {
		return ""
	}
	return candidate
}
