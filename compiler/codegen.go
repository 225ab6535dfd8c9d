package compiler

import (
	"fmt"
	"os"
)

// CompileToIR writes the textual IR of the last successful Compile to
// outputPath.
func (c *Compiler) CompileToIR(outputPath string) error {
	c.logger.Info("Generating textual IR to: %s", outputPath)

	if c.module == nil {
		c.logger.Error("No module to compile")
		return fmt.Errorf("no module to compile")
	}

	irText := c.module.String()
	c.logger.Debug("Generated %d bytes of IR text", len(irText))

	if err := os.WriteFile(outputPath, []byte(irText), 0o644); err != nil {
		c.logger.Error("Failed to write IR file '%s': %v", outputPath, err)
		return fmt.Errorf("failed to write IR file: %w", err)
	}

	c.logger.Info("Successfully wrote IR to: %s", outputPath)
	return nil
}
