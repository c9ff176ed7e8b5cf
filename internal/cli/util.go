package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// confirmOverwrite prompts the user before clobbering an existing file.
func confirmOverwrite(path string) bool {
	fmt.Fprintf(os.Stderr, "Output file %s already exists. Overwrite? [y/N]: ", path)
	reader := bufio.NewReader(os.Stdin)
	response, _ := reader.ReadString('\n')
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
