package registry

// Registry names as stored in the downloads table
const (
	RegistryNpm  = "npm"
	RegistryPyPI = "pypi"
)

// NpmPackages are the AI SDK packages tracked on npm
var NpmPackages = []string{
	"openai",
	"@anthropic-ai/sdk",
	"@langchain/core",
	"ai", // Vercel AI SDK
	"@google/generative-ai",
	"@aws-sdk/client-bedrock-runtime",
}

// PyPIPackages are the AI SDK packages tracked on PyPI
var PyPIPackages = []string{
	"openai",
	"anthropic",
	"langchain-core",
	"google-generativeai",
	"boto3", // AWS SDK (baseline)
	"transformers", // Hugging Face
}
