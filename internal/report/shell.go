package report

import "fmt"

// HTMLShell wraps the head and body fragments into a complete document.
// The preview path serves this verbatim; the PDF path appends PrintOnlyCSS
// to the head before wrapping.
func HTMLShell(head, body string) string {
	return fmt.Sprintf(`<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8"/>
  <meta name="viewport" content="width=device-width,initial-scale=1"/>
  <script src="https://cdn.tailwindcss.com"></script>
  %s
  <style>
    @media print {
      header.fixed-header { position: fixed; }
      footer.fixed-footer { position: fixed; }
    }
  </style>
</head>
<body class="text-slate-900">
  %s
</body>
</html>`, head, body)
}
