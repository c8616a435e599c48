package service

// SurfaceLoggingScript is injected into the checkout surface. It reports URL
// changes and the provider's return button so they show up in the logs; it
// never drives the payment flow.
const SurfaceLoggingScript = `(function() {
  var post = function(msg) {
    if (window.ReactNativeWebView && window.ReactNativeWebView.postMessage) {
      window.ReactNativeWebView.postMessage(JSON.stringify(msg));
    }
  };
  var last = '';
  setInterval(function() {
    if (window.location.href !== last) {
      last = window.location.href;
      post({type: 'URL_CHANGE_LOG', url: last, title: document.title, timestamp: Date.now()});
    }
    var buttons = document.querySelectorAll('button, a, input[type="submit"]');
    for (var i = 0; i < buttons.length; i++) {
      var text = (buttons[i].textContent || buttons[i].value || '').toLowerCase();
      if (text.indexOf('return') !== -1 || text.indexOf('volver') !== -1 || text.indexOf('regresar') !== -1) {
        post({type: 'RETURN_BUTTON_FOUND', url: window.location.href, buttonText: text.trim(), timestamp: Date.now()});
        break;
      }
    }
  }, 1000);
  true;
})();`
