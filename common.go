package mjbuild

import "context"

// runCommonBuild executes the configure → build → find sequence.
//
// # Process Flow
//
//  1. Create empty BuildResult
//  2. Call ConfigureFunc to prepare the build tree
//  3. Call BuildFunc to compile the extensions
//  4. Call FindFunc to locate compiled files
//  5. Return BuildResult with Success=true
//
// If any step fails, processing stops and the error is returned with
// Success=false and ExitCode set from the error. Nothing is retried.
//
// The BuildResult.Output field is populated by the step functions as they
// execute.
func runCommonBuild(ctx context.Context, config *BuildConfig, steps CommonBuildSteps) (*BuildResult, error) {
	result := &BuildResult{
		Success: false,
		Output:  []string{},
	}

	fail := func(err error) (*BuildResult, error) {
		result.Error = err
		result.ExitCode = ExitCode(err)
		return result, err
	}

	// Step 1: Configure the build tree
	if err := steps.ConfigureFunc(ctx, config, result); err != nil {
		return fail(err)
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	// Step 2: Compile the extensions
	if err := steps.BuildFunc(ctx, config, result); err != nil {
		return fail(err)
	}

	// Step 3: Find the built extension files
	extensions, err := steps.FindFunc(config)
	if err != nil {
		return fail(err)
	}

	result.Extensions = extensions
	result.Success = true
	return result, nil
}
