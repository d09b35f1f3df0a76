package mcp

import "github.com/mark3labs/mcp-go/mcp"

func getColorsTool() mcp.Tool {
	return mcp.NewTool("get_colors",
		mcp.WithDescription("List color tokens with their values and utility class names. Optionally restrict to one palette."),
		mcp.WithString("palette", mcp.Description("Palette name, e.g. \"primary\". Omit for every token.")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func resolveColorTool() mcp.Tool {
	return mcp.NewTool("resolve_color",
		mcp.WithDescription("Resolve a dotted color token path such as \"primary.500\" to its configured value."),
		mcp.WithString("token", mcp.Required(), mcp.Description("Dotted token path; a palette name resolves its DEFAULT shade.")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func resolveFontStackTool() mcp.Tool {
	return mcp.NewTool("resolve_font_stack",
		mcp.WithDescription("Return the ordered font families of a font role, preferred family first."),
		mcp.WithString("role", mcp.Required(), mcp.Description("Font role, e.g. \"sans\".")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func getContentGlobsTool() mcp.Tool {
	return mcp.NewTool("get_content_globs",
		mcp.WithDescription("Return the content globs the framework scans for class names, in configured order."),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func getPluginsTool() mcp.Tool {
	return mcp.NewTool("get_plugins",
		mcp.WithDescription("List configured framework plugins."),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func lintThemeTool() mcp.Tool {
	return mcp.NewTool("lint_theme",
		mcp.WithDescription("Report non-fatal theme issues: off-scale shade keys, duplicate globs, duplicate font families, unresolved color expressions."),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func scanUsageTool() mcp.Tool {
	return mcp.NewTool("scan_usage",
		mcp.WithDescription("Scan content files for color and font utility usage. Reports used, unused and unknown tokens."),
		mcp.WithString("root", mcp.Description("Project root the content globs are relative to. Defaults to the server's root.")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}
