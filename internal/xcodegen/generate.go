package xcodegen

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/xbuild-dev/xbuild/internal/runner"
)

// defaultBindingHeader declares the entry point exported by the
// package's static library.
const defaultBindingHeader = `#ifndef BINDINGS_H
#define BINDINGS_H

void main_rs(void);

#endif /* BINDINGS_H */
`

// defaultMainFile is the Objective-C shim that hands control to the
// library entry point.
const defaultMainFile = `#import <UIKit/UIKit.h>
#include "bindings.h"

int main(int argc, char *argv[]) {
    @autoreleasepool {
        main_rs();
    }
    return 0;
}
`

// CheckInstalled verifies the xcodegen tool is available.
func CheckInstalled(exec runner.Executor) error {
	out, err := exec.Run(runner.Command{Name: "xcodegen", Args: []string{"version"}})
	if err != nil || !strings.HasPrefix(out.Stdout, "Version:") {
		return errors.New("xcodegen is not found, install it with `brew install xcodegen`")
	}
	log.Info().Str("version", strings.TrimSpace(out.Stdout)).Msg("xcodegen")
	return nil
}

// Generate writes the project description and source scaffolds under
// srcDir/projectDir and runs xcodegen to materialize the .xcodeproj.
func Generate(exec runner.Executor, project *Project, srcDir, projectDir string) error {
	log.Debug().Str("dir", projectDir).Msg("writing xcodegen inputs")

	if err := os.MkdirAll(srcDir, 0o755); err != nil {
		return fmt.Errorf("failed to create source directory %s: %w", srcDir, err)
	}
	if err := os.MkdirAll(projectDir, 0o755); err != nil {
		return fmt.Errorf("failed to create project directory %s: %w", projectDir, err)
	}

	data, err := project.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(projectDir, "project.yml"), data, 0o644); err != nil {
		return fmt.Errorf("failed to write project.yml: %w", err)
	}
	if err := os.WriteFile(filepath.Join(srcDir, "bindings.h"), []byte(defaultBindingHeader), 0o644); err != nil {
		return fmt.Errorf("failed to write bindings.h: %w", err)
	}
	if err := os.WriteFile(filepath.Join(srcDir, "main.m"), []byte(defaultMainFile), 0o644); err != nil {
		return fmt.Errorf("failed to write main.m: %w", err)
	}

	log.Info().Msg("generating xcode project")
	if _, err := exec.Run(runner.Command{
		Name: "xcodegen",
		Args: []string{"--use-cache"},
		Dir:  projectDir,
	}); err != nil {
		return fmt.Errorf("failed to generate xcode project: %w", err)
	}
	return nil
}
