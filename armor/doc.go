/*
Package armor wraps stego text in a document that satisfies the requirements
of the AMP (Accelerated Mobile Pages) subset of HTML, so that it can be served
from, and survive modification by, an AMP cache. For the requirements of AMP
HTML, see https://amp.dev/documentation/guides-and-tutorials/learn/spec/amphtml/.
For modifications that may be made by an AMP cache, see
https://github.com/ampproject/amphtml/blob/main/docs/spec/amp-cache-modifications.md.

The encoding algorithm works as follows. HTML-escape the text and split it
into pieces of at most 64 KB, never inside a UTF-8 sequence. Wrap each piece
in a pre element, starting with a newline that HTML parsers discard. Then,
situate the markup so far within the body of the AMP HTML boilerplate. The
decoding algorithm is to scan the HTML for pre elements, unescape their text
contents, drop the one leading newline of each and concatenate.

The text is carried verbatim. The homoglyphs that hold hidden bits are not
ASCII whitespace (https://infra.spec.whatwg.org/#ascii-whitespace), so a pre
element keeps them and the ordinary spaces around them exactly as they are.
The reason for splitting the text into several pre elements is to limit the
amount of text a decoder may have to buffer while parsing the HTML. pre
elements may not be nested.

Example

The following is the result of encoding the string
"This was encoded with AMP armor.":

	<!doctype html>
	<html amp>
	<head>
	<meta charset="utf-8">
	<script async src="https://cdn.ampproject.org/v0.js"></script>
	<link rel="canonical" href="#">
	<meta name="viewport" content="width=device-width">
	<style amp-boilerplate>body{-webkit-animation:-amp-start 8s steps(1,end) 0s 1 normal both;-moz-animation:-amp-start 8s steps(1,end) 0s 1 normal both;-ms-animation:-amp-start 8s steps(1,end) 0s 1 normal both;animation:-amp-start 8s steps(1,end) 0s 1 normal both}@-webkit-keyframes -amp-start{from{visibility:hidden}to{visibility:visible}}@-moz-keyframes -amp-start{from{visibility:hidden}to{visibility:visible}}@-ms-keyframes -amp-start{from{visibility:hidden}to{visibility:visible}}@-o-keyframes -amp-start{from{visibility:hidden}to{visibility:visible}}@keyframes -amp-start{from{visibility:hidden}to{visibility:visible}}</style><noscript><style amp-boilerplate>body{-webkit-animation:none;-moz-animation:none;-ms-animation:none;animation:none}</style></noscript>
	</head>
	<body>
	<pre>
	This was encoded with AMP armor.</pre>
	</body>
	</html>
*/
package armor
