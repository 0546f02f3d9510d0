// Copyright © 2017 Microsoft <wastore@microsoft.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package common

import (
	"os"
	"strconv"
)

type EnvironmentVariable struct {
	Name         string
	DefaultValue string
	Description  string
	Hidden       bool
}

// GetEnvironmentVariable gets the environment variable or its default value
func GetEnvironmentVariable(env EnvironmentVariable) string {
	value := os.Getenv(env.Name)
	if value == "" {
		return env.DefaultValue
	}
	return value
}

// GetEnvironmentVariableAsInt is like GetEnvironmentVariable but parses the
// result as a decimal integer, falling back to the default on garbage.
func GetEnvironmentVariableAsInt(env EnvironmentVariable) int {
	value, err := strconv.Atoi(GetEnvironmentVariable(env))
	if err != nil {
		value, _ = strconv.Atoi(env.DefaultValue)
	}
	return value
}

// ClearEnvironmentVariable clears the environment variable
func ClearEnvironmentVariable(variable EnvironmentVariable) {
	_ = os.Setenv(variable.Name, "")
}

// This array needs to be updated when a new public environment variable is added
// Things are here, rather than in command line parameters for one of two reasons:
// 1. They are optional and obscure (e.g. performance tuning parameters) or
// 2. They are authentication secrets, which we do not accept on the command line
var VisibleEnvironmentVariables = []EnvironmentVariable{
	EEnvironmentVariable.LogLevel(),
	EEnvironmentVariable.LogLocation(),
	EEnvironmentVariable.PipelineDepth(),
	EEnvironmentVariable.PreferredChunkSize(),
	EEnvironmentVariable.Endpoint(),
	EEnvironmentVariable.Bucket(),
	EEnvironmentVariable.AWSAccessKeyID(),
	EEnvironmentVariable.AWSSecretAccessKey(),
	EEnvironmentVariable.AzureStorageAccount(),
	EEnvironmentVariable.AzureStorageKey(),
	EEnvironmentVariable.GoogleApplicationCredentials(),
}

var EEnvironmentVariable = EnvironmentVariable{}

func (EnvironmentVariable) LogLevel() EnvironmentVariable {
	return EnvironmentVariable{
		Name:         "CLOUDSHARE_LOG_LEVEL",
		DefaultValue: "INFO",
		Description:  "Minimum severity written to the session log.",
	}
}

func (EnvironmentVariable) LogLocation() EnvironmentVariable {
	return EnvironmentVariable{
		Name:        "CLOUDSHARE_LOG_LOCATION",
		Description: "Overrides where log files are stored, to avoid filling up a disk.",
	}
}

func (EnvironmentVariable) PipelineDepth() EnvironmentVariable {
	return EnvironmentVariable{
		Name:         "CLOUDSHARE_PIPELINE_DEPTH",
		DefaultValue: "4",
		Description:  "Overrides the number of container requests a single share keeps in flight. Performance tuning only.",
	}
}

func (EnvironmentVariable) PreferredChunkSize() EnvironmentVariable {
	return EnvironmentVariable{
		Name:         "CLOUDSHARE_CHUNK_SIZE",
		DefaultValue: "524288",
		Description:  "Preferred chunk size in bytes. Listed for reference only; no code path reads it.",
	}
}

func (EnvironmentVariable) Endpoint() EnvironmentVariable {
	return EnvironmentVariable{
		Name:        "CLOUDSHARE_ENDPOINT",
		Description: "Service endpoint of the object store, e.g. s3.amazonaws.com.",
	}
}

func (EnvironmentVariable) Bucket() EnvironmentVariable {
	return EnvironmentVariable{
		Name:        "CLOUDSHARE_BUCKET",
		Description: "Name of the container (bucket) that stores the shares.",
	}
}

func (EnvironmentVariable) AWSAccessKeyID() EnvironmentVariable {
	return EnvironmentVariable{
		Name:        "AWS_ACCESS_KEY_ID",
		Description: "The Access Key Id to access the S3 container.",
	}
}

func (EnvironmentVariable) AWSSecretAccessKey() EnvironmentVariable {
	return EnvironmentVariable{
		Name:        "AWS_SECRET_ACCESS_KEY",
		Description: "The AWS secret access key to access the S3 container.",
		Hidden:      true,
	}
}

func (EnvironmentVariable) AzureStorageAccount() EnvironmentVariable {
	return EnvironmentVariable{
		Name:        "AZURE_STORAGE_ACCOUNT",
		Description: "The Azure storage account that holds the container.",
	}
}

func (EnvironmentVariable) AzureStorageKey() EnvironmentVariable {
	return EnvironmentVariable{
		Name:        "AZURE_STORAGE_KEY",
		Description: "The shared key for the Azure storage account.",
		Hidden:      true,
	}
}

func (EnvironmentVariable) GoogleApplicationCredentials() EnvironmentVariable {
	return EnvironmentVariable{
		Name:        "GOOGLE_APPLICATION_CREDENTIALS",
		Description: "Path to the service account key file for Google Storage.",
	}
}
