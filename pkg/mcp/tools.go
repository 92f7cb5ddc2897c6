package mcp

import "github.com/mark3labs/mcp-go/mcp"

func listFilesTool() mcp.Tool {
	return mcp.NewTool("list_files",
		mcp.WithDescription("List the scanned TypeScript files with their import, dependency and dependent counts. Paths are relative to the scan root and use forward slashes."),
		mcp.WithString("prefix",
			mcp.Description("Only return files whose path starts with this prefix, e.g. 'src/components/'"),
		),
	)
}

func getFileImportsTool() mcp.Tool {
	return mcp.NewTool("get_file_imports",
		mcp.WithDescription("Get every import declared by a file in source order. Local imports include the absolute path they resolve to and, when that file was scanned, its graph path."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Project-relative file path, e.g. 'src/app.ts'"),
		),
	)
}

func getDependenciesTool() mcp.Tool {
	return mcp.NewTool("get_dependencies",
		mcp.WithDescription("Get the scanned files a file imports. Package imports are not part of the graph."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Project-relative file path"),
		),
		mcp.WithBoolean("transitive",
			mcp.Description("Follow imports recursively (default: false, direct imports only)"),
		),
	)
}

func getDependentsTool() mcp.Tool {
	return mcp.NewTool("get_dependents",
		mcp.WithDescription("Get the scanned files that import a file. Use transitive to find everything affected by a change to it."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Project-relative file path"),
		),
		mcp.WithBoolean("transitive",
			mcp.Description("Follow importers recursively (default: false, direct importers only)"),
		),
	)
}

func getGraphDOTTool() mcp.Tool {
	return mcp.NewTool("get_graph_dot",
		mcp.WithDescription("Render the whole dependency graph in Graphviz DOT format."),
		mcp.WithBoolean("labels",
			mcp.Description("Label edges with the resolved import path (default: server setting)"),
		),
	)
}
