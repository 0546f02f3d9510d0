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
	"os"

	"github.com/spf13/cobra"

	"github.com/wastore/cloudshare/share"
)

var catOffset int64
var catLength int64

var catCmd = &cobra.Command{
	Use:   "cat <storage-index> <shnum>",
	Short: "write a share's raw bytes to stdout",
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

		params, err := shareGeometry(ctx, container, share.ShareKey(si, shnum))
		if err != nil {
			return err
		}
		sh, err := share.OpenCloudShare(ctx, container, si, shnum, params)
		if err != nil {
			return err
		}

		length := catLength
		if length < 0 {
			length = sh.GetDataLength() - catOffset
		}
		data, err := sh.Read(ctx, catOffset, length)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	},
}

func init() {
	catCmd.Flags().Int64Var(&catOffset, "offset", 0, "start reading at this byte offset")
	catCmd.Flags().Int64Var(&catLength, "length", -1, "read this many bytes (default: to the end)")
	rootCmd.AddCommand(catCmd)
}
