package resources

import (
	"context"
	"os"
	"path"
)

// UnicodeDataURL is the canonical location of the Unicode emoji test data,
// the machine-readable inventory of all emoji sequences.
const UnicodeDataURL = "https://unicode.org/Public/emoji/latest/emoji-test.txt"

const emojiDataFilename = "emoji-test.txt"

type dataPlusErr struct {
	path string
	err  error
}

// DataPromise is the deferred result of ResolveEmojiData.
type DataPromise interface {
	Path() (string, error)
}

type dataLoader struct {
	await func(ctx context.Context) (string, error)
}

func (loader dataLoader) Path() (string, error) {
	return loader.await(context.Background())
}

// ResolveEmojiData resolves the emoji test data file. A non-empty argument
// names a local file, which must exist. With an empty argument, the file is
// looked up in the user's cache directory and downloaded from unicode.org
// on a cache miss.
func ResolveEmojiData(filepath string) DataPromise {
	ch := make(chan dataPlusErr)
	go func(ch chan<- dataPlusErr) {
		result := dataPlusErr{}
		if filepath != "" {
			if _, err := os.Stat(filepath); err != nil {
				result.err = NotFound(filepath, dataResourceType)
			} else {
				result.path = filepath
			}
			ch <- result
			close(ch)
			return
		}
		cachedir, err := CacheDirPath("unicode")
		if err != nil {
			result.err = err
			ch <- result
			close(ch)
			return
		}
		cached := path.Join(cachedir, emojiDataFilename)
		if _, err := os.Stat(cached); err == nil {
			tracer().Debugf("emoji data found in cache: %s", cached)
			result.path = cached
			ch <- result
			close(ch)
			return
		}
		tracer().Infof("downloading emoji data from %s", UnicodeDataURL)
		if err := DownloadCachedFile(cached, UnicodeDataURL); err != nil {
			result.err = err
		} else {
			result.path = cached
		}
		ch <- result
		close(ch)
	}(ch)
	return dataLoader{
		await: func(ctx context.Context) (string, error) {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case r := <-ch:
				return r.path, r.err
			}
		},
	}
}
