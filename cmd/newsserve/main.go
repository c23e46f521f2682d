// Copyright 2025 The NewsServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the newsserve command: the news analytics HTTP API,
the agent tool server and a handful of maintenance commands.

NewsServe answers queries over a news browsing dataset stored in SQLite:
article listings, per-user browsing history, daily category heat and user
interest shares. It also completes category and topic names from a prefix,
using a Patricia trie per field that is built from the store on first use.

# Usage

Load a dataset and start the API:

	newsserve import data/news.json
	newsserve serve

Serve the agent tools to an MCP client over stdio:

	newsserve mcp

Explore completions interactively:

	newsserve complete --field topic

# Configuration

Configuration is read from a TOML file (created with defaults when missing)
and can be overridden from the environment:

	[server]
	addr = "127.0.0.1:5000"
	min_date = "2019-06-13"
	max_date = "2019-07-03"

	[store]
	path = "~/.local/share/newsserve/news.db"

	[matcher]
	max_cached_prefix_len = 3
	preload = false

	[proxy]
	api_key = ""

Every key maps to a NEWSINSIGHT_ variable, e.g. NEWSINSIGHT_PROXY_API_KEY
or NEWSINSIGHT_STORE_PATH.

# Autocomplete

The first completion request for a field loads the distinct values from
the store; concurrent first requests wait on one shared build. Prefixes of
up to three characters are answered from a per-field cache that is replaced
together with the index on refresh:

	GET /api/autocomplete/category?prefix=Sp
	POST /api/autocomplete/refresh?field=topic

A refresh that fails to load keeps serving the previous index.
*/
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
