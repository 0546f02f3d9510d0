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

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wastore/cloudshare/cloud"
	"github.com/wastore/cloudshare/share"
)

var listCmd = &cobra.Command{
	Use:   "list [storage-index]",
	Short: "list chunk objects, for all shares or one share group",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		container, logger, err := newContainer(ctx)
		if err != nil {
			return err
		}
		defer logger.CloseLog()

		prefix := "shares/"
		if len(args) == 1 {
			si, err := share.ParseStorageIndexString(args[0])
			if err != nil {
				return err
			}
			prefix = share.ShareGroupPrefix(si)
		}

		listing, err := cloud.ListAllObjects(ctx, container, prefix)
		if err != nil {
			return err
		}
		for _, item := range listing.Contents {
			fmt.Printf("%12d  %s  %s\n", item.Size, item.LastModified.Format("2006-01-02 15:04:05"), item.Key)
		}
		fmt.Printf("%d objects\n", len(listing.Contents))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
