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

// Package cmd is the cloudshare maintenance CLI: inspect, read and remove
// shares directly in a cloud container. The full storage client lives in the
// layers above; this surface exists for operators.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wastore/cloudshare/cloud"
	"github.com/wastore/cloudshare/common"
	"github.com/wastore/cloudshare/share"
)

var (
	providerRaw string
	bucketName  string
	endpoint    string
	logLevelRaw string
)

var rootCmd = &cobra.Command{
	Use:     "cloudshare",
	Short:   "inspect and maintain chunked shares in a cloud object container",
	Version: common.CloudShareVersion,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if depth := common.GetEnvironmentVariableAsInt(common.EEnvironmentVariable.PipelineDepth()); depth > 0 {
			share.PipelineDepth = int64(depth)
		}
		return nil
	},
	SilenceUsage: true,
}

// Execute is the entry point wired up by main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&providerRaw, "provider", "S3", "which service backs the container: S3, Azure, Google or Memory")
	rootCmd.PersistentFlags().StringVar(&bucketName, "bucket", common.GetEnvironmentVariable(common.EEnvironmentVariable.Bucket()), "name of the container (bucket) holding the shares")
	rootCmd.PersistentFlags().StringVar(&endpoint, "endpoint", common.GetEnvironmentVariable(common.EEnvironmentVariable.Endpoint()), "service endpoint, e.g. s3.amazonaws.com")
	rootCmd.PersistentFlags().StringVar(&logLevelRaw, "log-level", common.GetEnvironmentVariable(common.EEnvironmentVariable.LogLevel()), "minimum severity logged to stderr")
}

// newContainer builds the configured container, wrapped with retries, plus
// the logger the retry wrapper reports incidents to.
func newContainer(ctx context.Context) (cloud.Container, common.ILoggerCloser, error) {
	var logLevel common.LogLevel
	if err := logLevel.Parse(logLevelRaw); err != nil {
		return nil, nil, fmt.Errorf("unknown log level %q", logLevelRaw)
	}
	var logger common.ILoggerCloser
	if logFolder := common.GetEnvironmentVariable(common.EEnvironmentVariable.LogLocation()); logFolder != "" {
		logger = common.NewSessionLogger("cloudshare", logLevel, logFolder)
	} else {
		logger = common.NewWriterLogger(os.Stderr, logLevel)
	}

	var provider common.Provider
	if err := provider.Parse(providerRaw); err != nil {
		return nil, nil, fmt.Errorf("unknown provider %q", providerRaw)
	}
	if bucketName == "" && provider != common.EProvider.Memory() {
		return nil, nil, fmt.Errorf("no bucket: pass --bucket or set %s", common.EEnvironmentVariable.Bucket().Name)
	}

	var (
		raw cloud.Container
		err error
	)
	switch provider {
	case common.EProvider.S3():
		raw, err = cloud.NewS3Container(bucketName, cloud.S3ContainerOptions{
			Endpoint:        endpoint,
			AccessKeyID:     common.GetEnvironmentVariable(common.EEnvironmentVariable.AWSAccessKeyID()),
			SecretAccessKey: common.GetEnvironmentVariable(common.EEnvironmentVariable.AWSSecretAccessKey()),
		})
	case common.EProvider.Azure():
		raw, err = cloud.NewAzureContainer(bucketName, cloud.AzureContainerOptions{
			AccountName: common.GetEnvironmentVariable(common.EEnvironmentVariable.AzureStorageAccount()),
			AccountKey:  common.GetEnvironmentVariable(common.EEnvironmentVariable.AzureStorageKey()),
		})
	case common.EProvider.Google():
		raw, err = cloud.NewGoogleContainer(ctx, bucketName, cloud.GoogleContainerOptions{})
	case common.EProvider.Memory():
		raw = cloud.NewMemoryContainer(bucketName)
	default:
		err = fmt.Errorf("provider %s is not usable from the CLI", provider)
	}
	if err != nil {
		logger.CloseLog()
		return nil, nil, err
	}

	return cloud.WithRetry(raw, logger), logger, nil
}

// parseShareArgs turns "<storage-index> <shnum>" into key material.
func parseShareArgs(args []string) (share.StorageIndex, int, error) {
	si, err := share.ParseStorageIndexString(args[0])
	if err != nil {
		return si, 0, err
	}
	var shnum int
	if _, err := fmt.Sscanf(args[1], "%d", &shnum); err != nil || shnum < 0 {
		return si, 0, fmt.Errorf("invalid share number %q", args[1])
	}
	return si, shnum, nil
}
