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

	"github.com/wastore/cloudshare/share"
)

var removeFromChunk int

var removeCmd = &cobra.Command{
	Use:   "remove <storage-index> <shnum>",
	Short: "delete a share's chunk objects",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		si, shnum, err := parseShareArgs(args)
		if err != nil {
			return err
		}
		container, logger, err := newContainer(ctx)
		if err != nil {
			return err
		}
		defer logger.CloseLog()

		if err := share.DeleteChunks(ctx, container, share.ShareKey(si, shnum), removeFromChunk); err != nil {
			return err
		}
		fmt.Printf("removed share %s %d (from chunk %d)\n", si, shnum, removeFromChunk)
		return nil
	},
}

func init() {
	removeCmd.Flags().IntVar(&removeFromChunk, "from-chunk", 0, "only delete chunk numbers at or above this (for truncation)")
	rootCmd.AddCommand(removeCmd)
}
