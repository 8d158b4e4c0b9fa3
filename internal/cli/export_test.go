package cli

// Exports for black-box tests.

var (
	RenderResult         = renderResult
	WriteFileAtomic      = writeFileAtomic
	DeriveOutputPath     = deriveOutputPath
	ClampParallel        = clampParallel
	SupportedFormatsList = supportedFormatsList
	ProgressPrinter      = progressPrinter
)
