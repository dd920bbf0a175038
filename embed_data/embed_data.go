package embed_data

import _ "embed"

//go:embed prompts/rust_conversion_prompt.tmpl
var RustConversionPrompt []byte

//go:embed prompts/fix_build_errors_prompt.tmpl
var FixBuildErrorsPrompt []byte

//go:embed models_details.json
var ModelDetails []byte

//go:embed queries/python.json
var PythonQuery []byte
