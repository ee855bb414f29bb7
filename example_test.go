/*
 * Copyright 2021 National Library of Norway.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *       http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package warcat_test

import (
	"fmt"
	"log"

	"github.com/nlnwa/warcat"
)

func Example() {
	f, err := warcat.Open("example/archive.warc.gz")
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	for {
		record, hasMore, err := warcat.ReadRecord(f, false)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("%s %s\n", record.Type(), record.RecordID())
		if !hasMore {
			break
		}
	}
}

func ExampleVerifier() {
	f, err := warcat.Open("example/archive.warc")
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	verifier := warcat.NewVerifier()
	for {
		record, hasMore, err := warcat.ReadRecord(f, false)
		if err != nil {
			log.Fatal(err)
		}
		for _, problem := range verifier.VerifyRecord(record) {
			fmt.Println(problem)
		}
		if !hasMore {
			break
		}
	}
}
